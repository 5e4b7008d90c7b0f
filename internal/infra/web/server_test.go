//go:build !integration

package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-giveaway-bot/internal/usecase"
)

const (
	testAPIKey = "k3y"
	testSecret = "s3cret"
)

type MockStatsUseCase struct {
	StatsFunc       func(ctx context.Context) usecase.Stats
	LeaderboardFunc func(ctx context.Context) usecase.Leaderboard
	ListCodesFunc   func(ctx context.Context) []usecase.CodeView
}

func (m *MockStatsUseCase) Stats(ctx context.Context) usecase.Stats {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return usecase.Stats{}
}

func (m *MockStatsUseCase) Leaderboard(ctx context.Context) usecase.Leaderboard {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx)
	}
	return usecase.Leaderboard{}
}

func (m *MockStatsUseCase) ListCodes(ctx context.Context) []usecase.CodeView {
	if m.ListCodesFunc != nil {
		return m.ListCodesFunc(ctx)
	}
	return nil
}

func (m *MockStatsUseCase) RefreshGauges(context.Context) error { return nil }

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func newTestServer(stats usecase.StatsUseCase) (*Server, *AuthManager) {
	auth := NewAuthManager(testSecret, testAPIKey, time.Minute)
	return NewServer(stats, auth, newTestLogger()), auth
}

func do(t *testing.T, h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(&MockStatsUseCase{})
	rec := do(t, s.Routes(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(&MockStatsUseCase{})
	rec := do(t, s.Routes(), http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSession_WithHeaderKey(t *testing.T) {
	s, auth := newTestServer(&MockStatsUseCase{})
	rec := do(t, s.Routes(), http.MethodPost, "/api/v1/session", "", map[string]string{"X-API-Key": testAPIKey})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	claims, err := auth.parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestSession_WithJSONBody(t *testing.T) {
	s, _ := newTestServer(&MockStatsUseCase{})
	rec := do(t, s.Routes(), http.MethodPost, "/api/v1/session", `{"api_key":"k3y"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSession_Rejected(t *testing.T) {
	s, _ := newTestServer(&MockStatsUseCase{})
	h := s.Routes()

	rec := do(t, h, http.MethodPost, "/api/v1/session", `{"api_key":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/session", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s, _ := newTestServer(&MockStatsUseCase{})
	h := s.Routes()
	for _, p := range []string{"/api/v1/stats", "/api/v1/leaderboard", "/api/v1/codes"} {
		rec := do(t, h, http.MethodGet, p, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, p)

		rec = do(t, h, http.MethodGet, p, "", map[string]string{"Authorization": "Bearer garbage"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, p)
	}
}

func TestProtectedRoutes_ServeStats(t *testing.T) {
	stats := &MockStatsUseCase{
		StatsFunc: func(context.Context) usecase.Stats {
			return usecase.Stats{TotalCodes: 4, RedeemedCodes: 1, AvailableCodes: 3, SuccessRate: 25}
		},
		LeaderboardFunc: func(context.Context) usecase.Leaderboard {
			return usecase.Leaderboard{
				Entries:    []usecase.LeaderboardEntry{{Rank: 1, UserID: 9, FirstName: "Ann", Codes: 1}},
				TotalUsers: 2,
			}
		},
		ListCodesFunc: func(context.Context) []usecase.CodeView {
			return []usecase.CodeView{{Code: "ABC", Prize: "Mug"}}
		},
	}
	s, auth := newTestServer(stats)
	h := s.Routes()
	token, _, err := auth.Mint()
	require.NoError(t, err)
	bearer := map[string]string{"Authorization": "Bearer " + token}

	rec := do(t, h, http.MethodGet, "/api/v1/stats", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	var st usecase.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 4, st.TotalCodes)
	assert.InDelta(t, 25.0, st.SuccessRate, 0.001)

	rec = do(t, h, http.MethodGet, "/api/v1/leaderboard", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	var lb usecase.Leaderboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lb))
	require.Len(t, lb.Entries, 1)
	assert.Equal(t, int64(9), lb.Entries[0].UserID)
	assert.Equal(t, 2, lb.TotalUsers)

	rec = do(t, h, http.MethodGet, "/api/v1/codes", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"ABC"`)
}

func TestAuth_ExpiredToken(t *testing.T) {
	auth := NewAuthManager(testSecret, testAPIKey, time.Minute)
	past := time.Now().Add(-time.Hour)
	auth.now = func() time.Time { return past }
	token, _, err := auth.Mint()
	require.NoError(t, err)

	auth.now = time.Now
	_, err = auth.parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuth_WrongSecret(t *testing.T) {
	token, _, err := NewAuthManager("other", testAPIKey, time.Minute).Mint()
	require.NoError(t, err)
	_, err = NewAuthManager(testSecret, testAPIKey, time.Minute).parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuth_EmptyAPIKeyNeverMatches(t *testing.T) {
	auth := NewAuthManager(testSecret, "", time.Minute)
	assert.False(t, auth.CheckAPIKey(""))
	assert.False(t, auth.CheckAPIKey("x"))
}
