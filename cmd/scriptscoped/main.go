// Command scriptscoped is the scriptscope history service. It runs the
// analysis pipeline on request for shared script repositories, archives
// the resulting snapshots, and serves the run history.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/scriptscope/scriptscope/internal/archive"
	"github.com/scriptscope/scriptscope/internal/history"
	"github.com/scriptscope/scriptscope/internal/platform"
	"github.com/scriptscope/scriptscope/pkg/config"
	"github.com/scriptscope/scriptscope/pkg/extract"
	"github.com/scriptscope/scriptscope/pkg/graph"
	"github.com/scriptscope/scriptscope/pkg/scan"
	"github.com/scriptscope/scriptscope/pkg/walk"
)

type serviceConfig struct {
	Port        string
	DatabaseURL string
	StoragePath string
	GCSBucket   string
}

func loadServiceConfig() serviceConfig {
	return serviceConfig{
		Port:        envOrDefault("PORT", "8080"),
		DatabaseURL: envOrDefault("DATABASE_URL", "postgres://localhost:5432/scriptscope?sslmode=disable"),
		StoragePath: envOrDefault("LOCAL_STORAGE_PATH", "/tmp/scriptscope-data"),
		GCSBucket:   os.Getenv("GCS_BUCKET"),
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := loadServiceConfig()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}
	if err := platform.AutoMigrate(db); err != nil {
		logger.Error("migrate database", "err", err)
		os.Exit(1)
	}

	store := history.NewStore(db)

	var storage archive.StorageClient
	if cfg.GCSBucket != "" {
		storage, err = archive.NewGCSStorage(context.Background(), cfg.GCSBucket)
		if err != nil {
			logger.Error("init gcs storage", "err", err)
			os.Exit(1)
		}
	} else {
		storage = archive.NewLocalStorage(cfg.StoragePath)
	}

	svc := &service{store: store, storage: storage, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/analyze", svc.handleAnalyze)
	mux.HandleFunc("GET /v1/runs", svc.handleRuns)
	mux.HandleFunc("GET /v1/runs/{id}", svc.handleRun)
	mux.HandleFunc("GET /healthz", healthHandler(db))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting scriptscoped", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

type service struct {
	store   *history.Store
	storage archive.StorageClient
	logger  *slog.Logger
}

type analyzeRequest struct {
	Root        string `json:"root"`
	Entry       string `json:"entry"`
	DedupeEdges bool   `json:"dedupe_edges,omitempty"`
}

type analyzeResponse struct {
	RunID      string              `json:"run_id"`
	SnapshotID string              `json:"snapshot_id"`
	Stats      graph.SnapshotStats `json:"stats"`
	Tree       []string            `json:"tree"`
}

func (s *service) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Root == "" || req.Entry == "" {
		http.Error(w, "root and entry are required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	root, err := filepath.Abs(req.Root)
	if err != nil {
		http.Error(w, "invalid root path", http.StatusBadRequest)
		return
	}

	cfg := config.DefaultConfig()
	if cfgFile := config.FindConfigFile(root); cfgFile != "" {
		if loaded, err := config.Load(cfgFile); err == nil {
			cfg = loaded
		}
	}

	scanned := scan.Discover(root, cfg.Scan.Extensions)
	walker := &walk.Walker{
		Scripts:     scanned,
		Extract:     extract.New(cfg.Scan.Callable),
		DedupeEdges: req.DedupeEdges || cfg.Graph.DedupeEdges,
	}

	res, err := walker.Walk(req.Entry)
	if err != nil {
		// Unknown entry is a client error, not a server fault.
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	snap := res.Snapshot(root, scanned, time.Since(start))
	slug := config.RootSlug(root)

	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("marshal snapshot", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := s.storage.PutSnapshot(r.Context(), slug, snap.ID, data); err != nil {
		s.logger.Error("archive snapshot", "err", err)
		http.Error(w, "storing snapshot failed", http.StatusInternalServerError)
		return
	}

	run, err := s.store.RecordRun(r.Context(), history.Run{
		RootSlug:      slug,
		Root:          root,
		Entry:         snap.Entry,
		SnapshotID:    snap.ID,
		StorageRef:    slug + "/snapshots/" + snap.ID + ".json",
		ScriptCount:   snap.Stats.ScriptCount,
		VisitedCount:  snap.Stats.VisitedCount,
		EdgeCount:     snap.Stats.EdgeCount,
		ExternalCount: snap.Stats.ExternalCount,
		ScanErrors:    snap.Stats.ScanErrors,
	})
	if err != nil {
		s.logger.Error("record run", "err", err)
		http.Error(w, "recording run failed", http.StatusInternalServerError)
		return
	}

	s.logger.Info("analysis complete",
		"run", run.ID, "entry", snap.Entry,
		"visited", snap.Stats.VisitedCount, "edges", snap.Stats.EdgeCount)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analyzeResponse{
		RunID:      run.ID,
		SnapshotID: snap.ID,
		Stats:      snap.Stats,
		Tree:       res.Tree,
	})
}

func (s *service) handleRuns(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("root")
	if root == "" {
		http.Error(w, "root query parameter is required", http.StatusBadRequest)
		return
	}

	runs, err := s.store.ListRuns(r.Context(), config.RootSlug(root), 0)
	if err != nil {
		s.logger.Error("list runs", "err", err)
		http.Error(w, "listing runs failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

func (s *service) handleRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		s.logger.Error("get run", "err", err)
		http.Error(w, "loading run failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
