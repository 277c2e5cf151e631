package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/planemotion/planemotion/backend-go/internal/auth"
	"github.com/planemotion/planemotion/backend-go/internal/collab"
	"github.com/planemotion/planemotion/backend-go/internal/config"
	"github.com/planemotion/planemotion/backend-go/internal/diagram"
	"github.com/planemotion/planemotion/backend-go/internal/export"
	mw "github.com/planemotion/planemotion/backend-go/internal/middleware"
	"github.com/planemotion/planemotion/backend-go/internal/store"
	"github.com/planemotion/planemotion/backend-go/internal/typeid"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(st, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	diagramService := diagram.NewService(st)
	diagramHandler := diagram.NewHandler(diagramService)

	docLoader := func(ctx context.Context, diagramID string) ([]byte, error) {
		snap, err := st.GetLatestSnapshot(ctx, diagramID)
		if err != nil {
			return nil, err
		}
		return snap.Document, nil
	}

	docSaver := func(ctx context.Context, diagramID string, doc []byte) error {
		nextVersion := int32(1)
		if snap, err := st.GetLatestSnapshot(ctx, diagramID); err == nil {
			nextVersion = snap.Version + 1
		}

		_, err := st.CreateSnapshot(ctx, store.Snapshot{
			ID:        typeid.NewSnapshotID(),
			DiagramID: diagramID,
			Version:   nextVersion,
			Document:  doc,
		})
		if err != nil {
			return fmt.Errorf("create snapshot: %w", err)
		}
		return st.TouchDiagram(ctx, diagramID)
	}

	hub := collab.NewHub(docLoader, docSaver)
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(hubCtx, time.Duration(cfg.SnapshotEvery)*time.Second)
	}()

	exportHandler := export.NewHandler()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Export endpoint (public so the playground can use it)
	r.HandleFunc("/export/svg", exportHandler.ExportSVG).Methods("POST", "OPTIONS")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.Middleware)

	api.HandleFunc("/diagrams", diagramHandler.List).Methods("GET")
	api.HandleFunc("/diagrams", diagramHandler.Create).Methods("POST")
	api.HandleFunc("/diagrams/{diagramId}", diagramHandler.Get).Methods("GET")
	api.HandleFunc("/diagrams/{diagramId}", diagramHandler.Delete).Methods("DELETE")
	api.HandleFunc("/diagrams/{diagramId}/invite", diagramHandler.Invite).Methods("POST")
	api.HandleFunc("/diagrams/{diagramId}/members", diagramHandler.ListMembers).Methods("GET")
	api.HandleFunc("/diagrams/{diagramId}/members/{userId}", diagramHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/diagrams/{diagramId}/snapshots/latest", diagramHandler.GetLatestSnapshot).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/diagram/{diagramId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, st, cfg)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so dirty scenes are snapshotted
		stopHub()
		<-hubDone

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, st *store.Store, cfg *config.Config) {
	diagramID := mux.Vars(r)["diagramId"]

	var userID string
	var displayName string

	// The playground diagram allows anonymous access
	const playgroundDiagramID = "diag_playground"
	if diagramID == playgroundDiagramID {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		token := auth.TokenFromRequest(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		var err error
		userID, err = authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if _, err := st.GetMember(r.Context(), diagramID, userID); err != nil {
			http.Error(w, "not a diagram member", http.StatusForbidden)
			return
		}

		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(cfg.AllowedOrigins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, userID, displayName, diagramID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func originPatterns(allowedOrigins string) []string {
	var patterns []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}
