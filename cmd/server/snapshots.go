package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"swole.dev/internal/persistence/indexdb"
	persistlog "swole.dev/internal/persistence/log"
	"swole.dev/internal/persistence/snapshot"
	"swole.dev/internal/sim/world"
)

type snapshotter struct {
	reg  *world.Registry
	dir  string
	keep int
	idx  *indexdb.SQLiteIndex
	log  *log.Logger

	mu      sync.Mutex
	lastSeq uint64
}

func (s *snapshotter) run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.write(); err != nil {
				s.log.Printf("snapshot write: %v", err)
			}
		}
	}
}

// write captures the registry and returns the written path, or "" when
// nothing changed since the last snapshot.
func (s *snapshotter) write() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.reg.ExportSnapshot()
	if snap.Seq == s.lastSeq && latestSnapshot(filepath.Dir(s.dir)) != "" {
		return "", nil
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%d.snap.zst", snap.Seq))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return "", err
	}
	s.lastSeq = snap.Seq
	if s.idx != nil {
		s.idx.RecordSnapshot(path, snap)
	}
	if err := pruneSnapshots(s.dir, s.keep); err != nil {
		s.log.Printf("snapshot prune: %v", err)
	}
	return path, nil
}

type snapshotFile struct {
	seq  uint64
	path string
}

func listSnapshots(dir string) []snapshotFile {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []snapshotFile
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		seq, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, snapshotFile{seq: seq, path: filepath.Join(dir, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// latestSnapshot returns the highest-seq snapshot under <dataDir>/snapshots.
func latestSnapshot(dataDir string) string {
	files := listSnapshots(filepath.Join(dataDir, "snapshots"))
	if len(files) == 0 {
		return ""
	}
	return files[len(files)-1].path
}

// pruneSnapshots keeps the newest keep files; keep <= 0 keeps everything.
func pruneSnapshots(dir string, keep int) error {
	if keep <= 0 {
		return nil
	}
	files := listSnapshots(dir)
	if len(files) <= keep {
		return nil
	}
	for _, f := range files[:len(files)-keep] {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// rollForwardAudit applies audit entries newer than the registry's seq, so the
// next mutation continues the recorded sequence instead of reusing it. A gap
// in the log is an error: starting anyway would hand out seqs that replay
// later skips.
func rollForwardAudit(reg *world.Registry, auditDir string, logger *log.Logger) (int, error) {
	entries, err := persistlog.ReadAuditDir(auditDir)
	if err != nil {
		logger.Printf("audit read: %v (kept %d entries)", err, len(entries))
	}
	applied := 0
	for _, e := range entries {
		ok, err := reg.ApplyAudit(e)
		if err != nil {
			return applied, err
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}
