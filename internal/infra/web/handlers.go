package web

import (
	"encoding/json"
	"net/http"
	"time"

	"telegram-giveaway-bot/internal/infra/logging"
)

type sessionRequest struct {
	APIKey string `json:"api_key"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionHandler accepts the API key as X-API-Key or a JSON body.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-API-Key")
	if key == "" {
		var req sessionRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		key = req.APIKey
	}
	if !s.auth.CheckAPIKey(key) {
		logging.With(r.Context(), s.log).Warn().Str("remote", r.RemoteAddr).Msg("admin session refused")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	token, exp, err := s.auth.Mint()
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("failed to mint admin token")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, ExpiresAt: exp})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.statsUC.Stats(r.Context()))
}

func (s *Server) leaderboardHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.statsUC.Leaderboard(r.Context()))
}

func (s *Server) codesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"codes": s.statsUC.ListCodes(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
