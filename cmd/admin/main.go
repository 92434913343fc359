package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"swole.dev/internal/persistence/indexdb"
	persistlog "swole.dev/internal/persistence/log"
	"swole.dev/internal/persistence/snapshot"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		case "characters":
			charactersCmd(os.Args[2:])
			return
		case "audit":
			auditCmd(os.Args[2:])
			return
		case "rebuild-index":
			rebuildIndexCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail(1, "encode: %v", err)
	}
}

// listCmd prints the snapshot files under the data dir, oldest first.
func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	for _, p := range snapshotPaths(*dataDir) {
		h, err := snapshot.ReadHeader(p)
		if err != nil {
			fmt.Printf("%s\t(unreadable: %v)\n", filepath.Base(p), err)
			continue
		}
		fmt.Printf("%s\tseq=%d\tworlds=%d\tcreated=%s\n", filepath.Base(p), h.Seq, h.Worlds, h.CreatedAt)
	}
}

func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	path := fs.String("path", "", "snapshot path (default: latest in data dir)")
	_ = fs.Parse(args)

	p := resolveSnapshot(*dataDir, *path)
	snap, err := snapshot.ReadSnapshot(p)
	if err != nil {
		fail(1, "read snapshot: %v", err)
	}
	printJSON(snap)
}

func charactersCmd(args []string) {
	fs := flag.NewFlagSet("characters", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.Int("world", -1, "world id (default: all)")
	_ = fs.Parse(args)

	db, err := sql.Open("sqlite", filepath.Join(*dataDir, "index", "swole.sqlite"))
	if err != nil {
		fail(1, "open index: %v", err)
	}
	defer db.Close()
	rows, err := indexdb.ListCharacters(context.Background(), db, *worldID)
	if err != nil {
		fail(1, "query: %v", err)
	}
	printJSON(rows)
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.Int("world", -1, "filter by world id")
	charID := fs.Int("character", -1, "filter by character id")
	_ = fs.Parse(args)

	entries, err := persistlog.ReadAuditDir(filepath.Join(*dataDir, "audit"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
	}
	for _, e := range entries {
		if *worldID >= 0 && e.WorldID != *worldID {
			continue
		}
		if *charID >= 0 && e.CharacterID != *charID {
			continue
		}
		b, _ := json.Marshal(e)
		fmt.Println(string(b))
	}
}

// rebuildIndexCmd resets the sqlite read model from a snapshot. Run it with the server stopped.
func rebuildIndexCmd(args []string) {
	fs := flag.NewFlagSet("rebuild-index", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	path := fs.String("path", "", "snapshot path (default: latest in data dir)")
	_ = fs.Parse(args)

	p := resolveSnapshot(*dataDir, *path)
	snap, err := snapshot.ReadSnapshot(p)
	if err != nil {
		fail(1, "read snapshot: %v", err)
	}
	idx, err := indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "swole.sqlite"))
	if err != nil {
		fail(1, "open index: %v", err)
	}
	if err := idx.Rebuild(context.Background(), snap); err != nil {
		_ = idx.Close()
		fail(1, "rebuild: %v", err)
	}
	idx.RecordSnapshot(p, snap)
	if err := idx.Close(); err != nil {
		fail(1, "close index: %v", err)
	}
	fmt.Printf("rebuilt index from %s (worlds=%d characters=%d)\n", filepath.Base(p), len(snap.Worlds), snap.CharacterCount())
}

func resolveSnapshot(dataDir, path string) string {
	if p := strings.TrimSpace(path); p != "" {
		return p
	}
	paths := snapshotPaths(dataDir)
	if len(paths) == 0 {
		fail(2, "no snapshots under %s", dataDir)
	}
	return paths[len(paths)-1]
}

func snapshotPaths(dataDir string) []string {
	dir := filepath.Join(dataDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	type entry struct {
		seq  uint64
		path string
	}
	var out []entry
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		seq, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, entry{seq: seq, path: filepath.Join(dir, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	paths := make([]string, 0, len(out))
	for _, e := range out {
		paths = append(paths, e.path)
	}
	return paths
}
