package main

import (
	"flag"
	"fmt"
	"os"

	persistlog "swole.dev/internal/persistence/log"
	"swole.dev/internal/persistence/snapshot"
	"swole.dev/internal/sim/world"
)

func main() {
	var (
		snapPath = flag.String("snapshot", "", "path to .snap.zst to start from (optional; empty starts from an empty registry)")
		auditDir = flag.String("audit", "", "audit dir containing audit-*.jsonl.zst")
		toSeq    = flag.Uint64("to_seq", 0, "stop after this seq (inclusive, optional)")
		outPath  = flag.String("out", "", "write the replayed state to this snapshot path (optional)")
	)
	flag.Parse()

	if *auditDir == "" {
		fmt.Fprintln(os.Stderr, "missing -audit")
		os.Exit(2)
	}

	reg := world.NewRegistry(world.Config{})
	if *snapPath != "" {
		snap, err := snapshot.ReadSnapshot(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		if err := reg.ImportSnapshot(snap); err != nil {
			fmt.Fprintln(os.Stderr, "import snapshot:", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot v%d seq=%d worlds=%d characters=%d\n", snap.Header.Version, snap.Seq, len(snap.Worlds), snap.CharacterCount())
	}

	entries, err := persistlog.ReadAuditDir(*auditDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
	}

	applied, skipped := 0, 0
	for _, e := range entries {
		if *toSeq > 0 && e.Seq > *toSeq {
			break
		}
		ok, err := reg.ApplyAudit(e)
		if err != nil {
			fmt.Fprintln(os.Stderr, "apply:", err)
			os.Exit(1)
		}
		if ok {
			applied++
		} else {
			skipped++
		}
	}

	out := reg.ExportSnapshot()
	fmt.Printf("replayed applied=%d skipped=%d seq=%d worlds=%d characters=%d\n", applied, skipped, out.Seq, len(out.Worlds), out.CharacterCount())

	if *outPath != "" {
		if err := snapshot.WriteSnapshot(*outPath, out); err != nil {
			fmt.Fprintln(os.Stderr, "write snapshot:", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *outPath)
	}
}
