package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotPaths_OrderedBySeq(t *testing.T) {
	data := t.TempDir()
	dir := filepath.Join(data, "snapshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, n := range []string{"10.snap.zst", "2.snap.zst", "x.snap.zst", "5.snap.zst.tmp"} {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got := snapshotPaths(data)
	if len(got) != 2 || filepath.Base(got[0]) != "2.snap.zst" || filepath.Base(got[1]) != "10.snap.zst" {
		t.Fatalf("paths: %v", got)
	}
	if p := resolveSnapshot(data, " /explicit.snap.zst "); p != "/explicit.snap.zst" {
		t.Fatalf("explicit path: %q", p)
	}
	if p := resolveSnapshot(data, ""); filepath.Base(p) != "10.snap.zst" {
		t.Fatalf("latest: %q", p)
	}
}
