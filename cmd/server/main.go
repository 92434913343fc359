package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"

	persistlog "swole.dev/internal/persistence/log"
	"swole.dev/internal/persistence/indexdb"
	"swole.dev/internal/persistence/snapshot"
	"swole.dev/internal/protocol"
	"swole.dev/internal/sim/tuning"
	"swole.dev/internal/sim/world"
	"swole.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: built-in defaults)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite read-model index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")

		profMode = flag.String("profile", "", "write a cpu or mem profile to the data dir on exit")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	switch strings.TrimSpace(*profMode) {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*dataDir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(*dataDir), profile.NoShutdownHook).Stop()
	default:
		logger.Fatalf("unknown -profile %q (want cpu or mem)", *profMode)
	}

	tune := tuning.Defaults()
	if tp := strings.TrimSpace(*tuningPath); tp != "" {
		t, err := tuning.Load(tp)
		if err != nil {
			logger.Fatalf("load tuning: %v", err)
		}
		tune = t
	}
	if err := tuning.ApplyEnv(&tune); err != nil {
		logger.Fatalf("tuning env: %v", err)
	}
	if tune.ProtocolVersion != protocol.Version {
		logger.Printf("tuning protocol_version=%s but server speaks %s", tune.ProtocolVersion, protocol.Version)
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	reg := world.NewRegistry(world.Config{
		MaxWorlds:             tune.MaxWorlds,
		MaxCharactersPerWorld: tune.MaxCharactersPerWorld,
		MaxNameLen:            tune.MaxNameLen,
	})

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(*dataDir)
	}
	resumed := false
	var snap snapshot.SnapshotV1
	if snapshotToLoad != "" {
		var err error
		snap, err = snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if err := reg.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		resumed = true
		logger.Printf("resumed from snapshot=%s seq=%d worlds=%d characters=%d",
			filepath.Base(snapshotToLoad), snap.Seq, len(snap.Worlds), snap.CharacterCount())
	}
	applied, err := rollForwardAudit(reg, filepath.Join(*dataDir, "audit"), logger)
	if err != nil {
		logger.Fatalf("audit roll-forward: %v", err)
	}
	if applied > 0 {
		resumed = true
		logger.Printf("rolled audit forward entries=%d seq=%d", applied, reg.Seq())
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		var err error
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "swole.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		// The index only follows the audit stream, so bring it in line with the resumed state first.
		if err := idx.Rebuild(context.Background(), reg.ExportSnapshot()); err != nil {
			logger.Printf("index rebuild: %v", err)
		}
	}

	auditLog := persistlog.NewAuditLogger(*dataDir)
	defer auditLog.Close()
	reg.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})

	if !resumed {
		for _, name := range tune.StarterWorlds {
			if _, err := reg.CreateWorld(name); err != nil {
				logger.Printf("starter world %q: %v", name, err)
			}
		}
	}

	validator, err := protocol.NewValidator()
	if err != nil {
		logger.Fatalf("protocol schemas: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	snaps := &snapshotter{
		reg:     reg,
		dir:     filepath.Join(*dataDir, "snapshots"),
		keep:    tune.SnapshotKeep,
		idx:     idx,
		log:     logger,
		lastSeq: snap.Seq,
	}
	if every := tune.SnapshotEvery(); every > 0 {
		go snaps.run(ctx, every)
	}

	wsSrv := ws.NewServer(reg, validator, tune.Session, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(reg, idx))
	mux.HandleFunc("/admin/v1/snapshot", adminSnapshotHandler(snaps))
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s (worlds=%d)", *addr, len(reg.Worlds()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("http: %v", err)
	}
	wsSrv.Close()

	if _, err := snaps.write(); err != nil {
		logger.Printf("final snapshot: %v", err)
	}
	logger.Printf("stopped")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

type multiAuditLogger struct {
	a world.AuditLogger
	b *indexdb.SQLiteIndex
}

func (m multiAuditLogger) WriteAudit(entry world.AuditEntry) error {
	var err error
	if m.a != nil {
		err = m.a.WriteAudit(entry)
	}
	if m.b != nil {
		_ = m.b.WriteAudit(entry)
	}
	return err
}
