package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gamenight/internal/lobby"
)

// SnapshotProvider is what the gateway needs from the lobby engine to
// serve read-only state.
type SnapshotProvider interface {
	List(ctx context.Context) []lobby.Entry
}

// Server serves the live lobby feed: a WebSocket endpoint per lobby and
// JSON snapshots of the current lobby list.
type Server struct {
	connectionManager *ConnectionManager
	snapshots         SnapshotProvider
}

// NewServer creates the gateway HTTP server.
func NewServer(cm *ConnectionManager, snapshots SnapshotProvider) *Server {
	return &Server{
		connectionManager: cm,
		snapshots:         snapshots,
	}
}

// Handler returns the CORS-wrapped HTTP handler for the gateway.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/lobby", s.handleLobbyConnection)
	mux.HandleFunc("/lobbies", s.handleLobbyList)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/health", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodHead, http.MethodGet},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}

// ListenAndServe runs the gateway until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	log.Info().Str("addr", addr).Msg("gateway listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway server: %w", err)
	}
	return nil
}

func (s *Server) handleLobbyConnection(w http.ResponseWriter, r *http.Request) {
	lobbyID := r.URL.Query().Get("lobby_id")
	if lobbyID == "" {
		http.Error(w, "lobby_id is required", http.StatusBadRequest)
		return
	}

	if err := s.connectionManager.UpgradeConnection(w, r, lobbyID); err != nil {
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
	}
}

func (s *Server) handleLobbyList(w http.ResponseWriter, r *http.Request) {
	entries := s.snapshots.List(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		log.Error().Err(err).Msg("failed to encode lobby list")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	total, perLobby := s.connectionManager.Stats()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"total_connections": total,
		"active_lobbies":    len(perLobby),
		"lobby_connections": perLobby,
	}); err != nil {
		log.Error().Err(err).Msg("failed to encode stats")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Error().Err(err).Msg("failed to write health check response")
	}
}
