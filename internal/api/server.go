package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/deepsocial/backend/internal/config"
	"github.com/deepsocial/backend/internal/search"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type contextKey string

const userIDKey contextKey = "userID"

// Server holds the HTTP surface: routing, auth and JSON plumbing
// around the search service.
type Server struct {
	cfg     *config.Config
	service *search.Service
}

func NewServer(cfg *config.Config, service *search.Service) *Server {
	return &Server{cfg: cfg, service: service}
}

// Router builds the mux router. Everything except /health sits behind
// bearer-token auth.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	authed := router.PathPrefix("/").Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/search", s.handleStartSearch).Methods("POST")
	authed.HandleFunc("/search/{id}/status", s.handleSearchStatus).Methods("GET")
	authed.HandleFunc("/search/{id}/results", s.handleSearchResults).Methods("GET")
	authed.HandleFunc("/history", s.handleHistory).Methods("GET")

	return router
}

// authMiddleware resolves the bearer token to a user id. Tokens are
// static, configured pairs; there is no identity provider behind them.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, ok := s.cfg.APITokens[token]
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
