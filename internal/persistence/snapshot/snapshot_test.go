package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func sample() SnapshotV1 {
	return SnapshotV1{
		Header: Header{Version: Version, Seq: 7, CreatedAt: "2026-01-02T03:04:05Z", Worlds: 2},
		Seq:    7,
		Worlds: []WorldV1{
			{ID: 0, Name: "GYM", Characters: []CharacterV1{
				{ID: 0, Name: "arnold", Muscles: []MuscleV1{{Group: "BICEPS", Side: "LEFT", Mass: 8191, Flex: 1, Pump: 65535}}},
				{ID: 2, Name: "franco"},
			}},
			{ID: 3, Name: "BEACH"},
		},
	}
}

func TestWriteReadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap", "7.snap.zst")
	want := sample()
	if err := WriteSnapshot(path, want); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if got.Seq != 7 || len(got.Worlds) != 2 || got.Worlds[1].ID != 3 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	c := got.Worlds[0].Characters
	if len(c) != 2 || c[1].ID != 2 || c[0].Muscles[0].Mass != 8191 || c[0].Muscles[0].Pump != 65535 {
		t.Fatalf("characters mismatch: %+v", c)
	}
	if got.CharacterCount() != 2 {
		t.Fatalf("CharacterCount=%d", got.CharacterCount())
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Seq != 7 || h.Worlds != 2 {
		t.Fatalf("header mismatch: %+v", h)
	}
}

func TestReadSnapshot_RejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap.zst")
	s := sample()
	s.Header.Version = 99
	if err := WriteSnapshot(path, s); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected version error")
	}
}
