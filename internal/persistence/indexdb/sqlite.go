package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"swole.dev/internal/persistence/snapshot"
	"swole.dev/internal/sim/world"
)

// SQLiteIndex is a queryable read model of the registry. It is fed from the
// audit stream and never read back by the server.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// sendMu orders sends on ch against close(ch).
	sendMu  sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

type reqKind int

const (
	reqAudit reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	audit    world.AuditEntry
	snapshot snapshotRow
}

type snapshotRow struct {
	Seq        uint64
	Path       string
	CreatedAt  string
	Worlds     int
	Characters int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS worlds (
			world_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS characters (
			world_id INTEGER NOT NULL,
			character_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (world_id, character_id)
		);`,
		`CREATE TABLE IF NOT EXISTS muscles (
			world_id INTEGER NOT NULL,
			character_id INTEGER NOT NULL,
			muscle_group TEXT NOT NULL,
			side TEXT NOT NULL,
			mass INTEGER NOT NULL,
			flex INTEGER NOT NULL,
			pump INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (world_id, character_id, muscle_group, side)
		);`,
		`CREATE TABLE IF NOT EXISTS audits (
			seq INTEGER PRIMARY KEY,
			time TEXT NOT NULL,
			action TEXT NOT NULL,
			world_id INTEGER NOT NULL,
			character_id INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_character ON audits(world_id, character_id, seq);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			seq INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			created_at TEXT NOT NULL,
			worlds INTEGER NOT NULL,
			characters INTEGER NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains pending writes and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.sendMu.Lock()
		s.closed = true
		close(s.ch)
		s.sendMu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Dropped reports how many writes were discarded because the writer fell behind.
func (s *SQLiteIndex) Dropped() uint64 { return s.dropped.Load() }

func (s *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqAudit, audit: entry})
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqSnapshot, snapshot: snapshotRow{
		Seq:        snap.Header.Seq,
		Path:       path,
		CreatedAt:  snap.Header.CreatedAt,
		Worlds:     len(snap.Worlds),
		Characters: snap.CharacterCount(),
	}})
}

// Rebuild replaces the world/character/muscle tables with the snapshot contents.
// Runs synchronously; call it before the first WriteAudit.
func (s *SQLiteIndex) Rebuild(ctx context.Context, snap snapshot.SnapshotV1) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{`DELETE FROM muscles`, `DELETE FROM characters`, `DELETE FROM worlds`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	at := snap.Header.CreatedAt
	for _, w := range snap.Worlds {
		if _, err := tx.ExecContext(ctx, `INSERT INTO worlds(world_id,name,created_at) VALUES(?,?,?)`, w.ID, w.Name, at); err != nil {
			return err
		}
		for _, c := range w.Characters {
			if _, err := tx.ExecContext(ctx, `INSERT INTO characters(world_id,character_id,name,created_at) VALUES(?,?,?,?)`, w.ID, c.ID, c.Name, at); err != nil {
				return err
			}
			for _, m := range c.Muscles {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO muscles(world_id,character_id,muscle_group,side,mass,flex,pump,updated_at) VALUES(?,?,?,?,?,?,?,?)`,
					w.ID, c.ID, m.Group, m.Side, m.Mass, m.Flex, m.Pump, at,
				); err != nil {
					return err
				}
			}
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) enqueue(r req) {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Audit JSONL stays the source of truth; the index can be rebuilt from a snapshot.
		s.dropped.Add(1)
	}
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		var err error
		switch r.kind {
		case reqAudit:
			err = applyAudit(ctx, tx, r.audit)
		case reqSnapshot:
			_, err = tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO snapshots(seq,path,created_at,worlds,characters) VALUES(?,?,?,?,?)`,
				int64(r.snapshot.Seq), r.snapshot.Path, r.snapshot.CreatedAt, r.snapshot.Worlds, r.snapshot.Characters,
			)
		}
		if err != nil {
			rollback()
			continue
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait || len(s.ch) == 0 {
			commit()
		}
	}
	commit()
}

func applyAudit(ctx context.Context, tx *sql.Tx, a world.AuditEntry) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO audits(seq,time,action,world_id,character_id,raw_json) VALUES(?,?,?,?,?,?)`,
		int64(a.Seq), a.Time, a.Action, a.WorldID, a.CharacterID, string(raw),
	); err != nil {
		return err
	}

	switch a.Action {
	case world.AuditWorldCreate:
		_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO worlds(world_id,name,created_at) VALUES(?,?,?)`, a.WorldID, a.Name, a.Time)
	case world.AuditWorldRemove:
		for _, q := range []string{
			`DELETE FROM muscles WHERE world_id=?`,
			`DELETE FROM characters WHERE world_id=?`,
			`DELETE FROM worlds WHERE world_id=?`,
		} {
			if _, err = tx.ExecContext(ctx, q, a.WorldID); err != nil {
				return err
			}
		}
	case world.AuditCharacterCreate:
		_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO characters(world_id,character_id,name,created_at) VALUES(?,?,?,?)`, a.WorldID, a.CharacterID, a.Name, a.Time)
	case world.AuditCharacterRemove:
		if _, err = tx.ExecContext(ctx, `DELETE FROM muscles WHERE world_id=? AND character_id=?`, a.WorldID, a.CharacterID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM characters WHERE world_id=? AND character_id=?`, a.WorldID, a.CharacterID)
	case world.AuditMuscleSet:
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO muscles(world_id,character_id,muscle_group,side,mass,flex,pump,updated_at) VALUES(?,?,?,?,?,?,?,?)`,
			a.WorldID, a.CharacterID, a.Group, a.Side, a.Mass, a.Flex, a.Pump, a.Time,
		)
	}
	return err
}
