package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"swole.dev/internal/persistence/indexdb"
	"swole.dev/internal/sim/world"
)

func metricsHandler(reg *world.Registry, idx *indexdb.SQLiteIndex) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		worlds := reg.Worlds()
		fmt.Fprintf(rw, "# HELP swole_registry_seq Registry mutation counter.\n")
		fmt.Fprintf(rw, "# TYPE swole_registry_seq counter\n")
		fmt.Fprintf(rw, "swole_registry_seq %d\n", reg.Seq())
		fmt.Fprintf(rw, "# HELP swole_worlds Current number of worlds.\n")
		fmt.Fprintf(rw, "# TYPE swole_worlds gauge\n")
		fmt.Fprintf(rw, "swole_worlds %d\n", len(worlds))
		fmt.Fprintf(rw, "# HELP swole_world_characters Current number of characters per world.\n")
		fmt.Fprintf(rw, "# TYPE swole_world_characters gauge\n")
		for _, w := range worlds {
			fmt.Fprintf(rw, "swole_world_characters{world=%q} %d\n", w.Name, w.Characters)
		}
		if idx != nil {
			fmt.Fprintf(rw, "# HELP swole_index_dropped_total Audit entries the sqlite index dropped.\n")
			fmt.Fprintf(rw, "# TYPE swole_index_dropped_total counter\n")
			fmt.Fprintf(rw, "swole_index_dropped_total %d\n", idx.Dropped())
		}
	}
}

// adminSnapshotHandler forces a snapshot. Loopback only.
func adminSnapshotHandler(s *snapshotter) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		path, err := s.write()
		rw.Header().Set("Content-Type", "application/json")
		if err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
			return
		}
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "path": path, "seq": s.reg.Seq()})
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
