package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

// TokenStore persists issued tokens. [repositories.TokenRepository] satisfies it.
type TokenStore interface {
	Create(token *models.DeveloperToken) error
}

// TokenResponse is the body of GET /token.
type TokenResponse struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// TokenHandler issues a fresh developer token per request.
//
// Query parameters:
//   - origin: repeatable or comma separated; every value must be in the allowed origin list
//   - expires_in: lifetime in seconds, defaults to [auth.DefaultValidity]
type TokenHandler struct {
	generator *auth.TokenGenerator
	allowed   []string
	store     TokenStore
	logger    *log.Logger
}

// NewTokenHandler creates a handler for generator. store may be nil.
func NewTokenHandler(generator *auth.TokenGenerator, allowedOrigins []string, store TokenStore, logger *log.Logger) *TokenHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TokenHandler{generator: generator, allowed: allowedOrigins, store: store, logger: logger}
}

func (h *TokenHandler) Routes() []string {
	return []string{"GET /token"}
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var origins []string
	for _, raw := range q["origin"] {
		origins = append(origins, models.ParseOrigin(raw)...)
	}
	for _, o := range origins {
		if !slices.Contains(h.allowed, o) {
			writeError(w, http.StatusForbidden, "origin not allowed: "+o)
			return
		}
	}

	opts := []auth.TokenOption{}
	if len(origins) > 0 {
		opts = append(opts, auth.WithOrigin(origins...))
	}
	if raw := strings.TrimSpace(q.Get("expires_in")); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || secs <= 0 {
			writeError(w, http.StatusBadRequest, "expires_in must be a positive number of seconds")
			return
		}
		if ceiling := int64(auth.MaxValidity / time.Second); secs > ceiling {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("expires_in must not exceed %d seconds", ceiling))
			return
		}
		opts = append(opts, auth.WithLifetime(time.Duration(secs)*time.Second))
	}

	token, err := h.generator.GenerateToken(opts...)
	if err != nil {
		var apiErr *shared.Error
		if errors.As(err, &apiErr) && apiErr.Kind == shared.KindValidation {
			writeError(w, http.StatusBadRequest, apiErr.Message)
			return
		}
		h.logger.Error("failed to sign developer token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign developer token")
		return
	}

	if h.store != nil {
		cred := h.generator.Credential()
		record := models.NewDeveloperToken(0, cred.TeamID(), cred.KeyID(), token.Value, token.IssuedAt, token.ExpiresAt, origins)
		if err := h.store.Create(record); err != nil {
			h.logger.Warn("failed to record issued token", "error", err)
		}
	}

	h.logger.Debug("issued developer token", "expires_at", token.ExpiresAt, "origins", len(origins))
	writeJSON(w, http.StatusOK, TokenResponse{
		Token:     token.Value,
		IssuedAt:  token.IssuedAt.UTC(),
		ExpiresAt: token.ExpiresAt.UTC(),
	})
}

// HealthHandler reports liveness.
type HealthHandler struct{}

func (HealthHandler) Routes() []string { return []string{"GET /health"} }

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewTokenRouter wires the token and health handlers behind recover, logging and CORS middleware.
func NewTokenRouter(tokens *TokenHandler, allowedOrigins []string, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger), CORS(allowedOrigins))
	router.Handler(tokens)
	router.Handler(HealthHandler{})
	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
