package indexdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"swole.dev/internal/persistence/snapshot"
	"swole.dev/internal/sim/world"
)

func openRaw(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteIndex_AppliesAudit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	entries := []world.AuditEntry{
		{Seq: 1, Time: "t1", Action: world.AuditWorldCreate, WorldID: 0, CharacterID: -1, Name: "GYM"},
		{Seq: 2, Time: "t2", Action: world.AuditCharacterCreate, WorldID: 0, CharacterID: 0, Name: "arnold"},
		{Seq: 3, Time: "t3", Action: world.AuditCharacterCreate, WorldID: 0, CharacterID: 1, Name: "franco"},
		{Seq: 4, Time: "t4", Action: world.AuditMuscleSet, WorldID: 0, CharacterID: 0, Group: "CHEST", Side: "CENTER", Mass: 100, Flex: 200, Pump: 300},
		{Seq: 5, Time: "t5", Action: world.AuditMuscleSet, WorldID: 0, CharacterID: 0, Group: "CHEST", Side: "CENTER", Mass: 101, Flex: 200, Pump: 300},
		{Seq: 6, Time: "t6", Action: world.AuditCharacterRemove, WorldID: 0, CharacterID: 1, Name: "franco"},
	}
	for _, e := range entries {
		if err := idx.WriteAudit(e); err != nil {
			t.Fatalf("WriteAudit: %v", err)
		}
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if idx.Dropped() != 0 {
		t.Fatalf("dropped=%d", idx.Dropped())
	}

	db := openRaw(t, path)
	rows, err := ListCharacters(context.Background(), db, -1)
	if err != nil {
		t.Fatalf("ListCharacters: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "arnold" || rows[0].Muscles != 1 {
		t.Fatalf("rows: %+v", rows)
	}
	var mass int
	if err := db.QueryRow(`SELECT mass FROM muscles WHERE world_id=0 AND character_id=0`).Scan(&mass); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if mass != 101 {
		t.Fatalf("mass=%d want 101", mass)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM audits`).Scan(&n); err != nil || n != 6 {
		t.Fatalf("audits=%d err=%v", n, err)
	}
}

func TestSQLiteIndex_RebuildAndSnapshotRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{Version: snapshot.Version, Seq: 9, CreatedAt: "now", Worlds: 2},
		Seq:    9,
		Worlds: []snapshot.WorldV1{
			{ID: 0, Name: "GYM", Characters: []snapshot.CharacterV1{
				{ID: 2, Name: "ronnie", Muscles: []snapshot.MuscleV1{{Group: "BACK", Side: "CENTER", Mass: 5}}},
			}},
			{ID: 1, Name: "BEACH", Characters: []snapshot.CharacterV1{{ID: 0, Name: "lee"}}},
		},
	}
	if err := idx.Rebuild(context.Background(), snap); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	idx.RecordSnapshot("/data/snapshots/9.snap.zst", snap)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db := openRaw(t, path)
	rows, err := ListCharacters(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("ListCharacters: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "lee" {
		t.Fatalf("world 1 rows: %+v", rows)
	}
	var chars int
	var p string
	if err := db.QueryRow(`SELECT path, characters FROM snapshots WHERE seq=9`).Scan(&p, &chars); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if p != "/data/snapshots/9.snap.zst" || chars != 2 {
		t.Fatalf("snapshot row: path=%q characters=%d", p, chars)
	}
}

func TestSQLiteIndex_WriteAuditRacesClose(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	var wg sync.WaitGroup
	start := make(chan struct{})
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			<-start
			for i := 0; i < 500; i++ {
				seq := uint64(g*1000 + i + 1)
				_ = idx.WriteAudit(world.AuditEntry{Seq: seq, Time: "t", Action: world.AuditMuscleSet, WorldID: 0, CharacterID: 0, Group: "CHEST", Side: "CENTER"})
				idx.RecordSnapshot("x.snap.zst", snapshot.SnapshotV1{Header: snapshot.Header{Seq: seq}})
			}
		}(g)
	}
	close(start)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()
	// Writes after Close are dropped silently.
	if err := idx.WriteAudit(world.AuditEntry{Seq: 99999}); err != nil {
		t.Fatalf("WriteAudit after Close: %v", err)
	}
}
