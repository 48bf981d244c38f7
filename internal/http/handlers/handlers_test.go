package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily_games/internal/domain"
	"daily_games/internal/engine"
	"daily_games/internal/epoch"
	"daily_games/internal/http/middleware"
	"daily_games/internal/repository"
	"daily_games/internal/rollover"
	"daily_games/internal/service"
	"daily_games/internal/store"
)

type apiFixture struct {
	router *gin.Engine
	tokens *service.TokenService
	mock   pgxmock.PgxPoolIface
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	clock := epoch.NewClock(0)
	states := store.NewStateStore(rdb)
	leaderboard := store.NewLeaderboard(rdb)
	streak := store.NewStreakTracker(rdb)
	sessions := store.NewSessionStore(rdb, time.Hour)
	snapshots := repository.NewSnapshotRepository(mock)

	fetch := func(context.Context) (*domain.PuzzleData, error) {
		return &domain.PuzzleData{FEN: "startpos", Solution: []string{"e2e4", "e7e5"}}, nil
	}

	var registry *engine.Registry
	pipeline := rollover.NewPipeline(rdb, clock, streak, leaderboard, snapshots,
		func(gameID string) (domain.RankOrder, error) { return registry.RankOrder(gameID) })
	registry = engine.NewRegistry(clock, fetch, pipeline.Run, time.Second)

	games := service.NewGameService(clock, registry, states, leaderboard, streak, snapshots)
	tokens := service.NewTokenService("test-secret", time.Hour)
	h := NewHandler(games, tokens, sessions)

	r := gin.New()
	r.POST("/api/v1/auth", h.Auth)
	r.POST("/api/v1/session/heartbeat", h.Heartbeat)
	r.GET("/api/v1/games", h.ListGames)
	r.GET("/api/v1/games/:game/start", middleware.JWT(tokens), h.Start)
	r.POST("/api/v1/games/:game/update", middleware.JWT(tokens), h.Update)
	r.GET("/api/v1/stats/:game/daily", h.DailyStats)

	return &apiFixture{router: r, tokens: tokens, mock: mock}
}

func (f *apiFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAuthIssuesToken(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodPost, "/api/v1/auth", "", `{"player_id":"p1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	playerID, err := f.tokens.Parse(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "p1", playerID)

	// session cookie set alongside
	assert.Contains(t, w.Header().Get("Set-Cookie"), "session_id=")
}

func TestAuth_MissingPlayerID(t *testing.T) {
	f := newAPI(t)
	w := f.do(t, http.MethodPost, "/api/v1/auth", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStart_RequiresAuth(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodGet, "/api/v1/games/chess_puzzle/start", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/games/chess_puzzle/start", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStartAndUpdateFlow(t *testing.T) {
	f := newAPI(t)
	token, err := f.tokens.Generate("p1")
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/api/v1/games/chess_puzzle/start", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var state engine.ChessState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 0, state.Score)
	assert.False(t, state.Gameover)

	w = f.do(t, http.MethodPost, "/api/v1/games/chess_puzzle/update", token,
		`{"action":{"move":"e2e4"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 1, state.Score)

	// wrong move ends the puzzle with a 200, not an error
	w = f.do(t, http.MethodPost, "/api/v1/games/chess_puzzle/update", token,
		`{"action":{"move":"h7h5"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Gameover)
	assert.False(t, state.Won)
}

func TestUpdate_WithoutStartIs404(t *testing.T) {
	f := newAPI(t)
	token, err := f.tokens.Generate("p1")
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/v1/games/chess_puzzle/update", token,
		`{"action":{"move":"e2e4"}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownGameIs404(t *testing.T) {
	f := newAPI(t)
	token, err := f.tokens.Generate("p1")
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/api/v1/games/tetris/start", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDailyStats(t *testing.T) {
	f := newAPI(t)

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"game_id", "epoch", "date", "rankings", "max_score", "streak", "created_at"}).
		AddRow("chess_puzzle", "2025-03-10@00", date, []byte(`[{"player_id":"a","score":2}]`), 2, 3, date)
	f.mock.ExpectQuery("SELECT game_id, epoch, date, rankings").
		WithArgs("chess_puzzle").
		WillReturnRows(rows)

	w := f.do(t, http.MethodGet, "/api/v1/stats/chess_puzzle/daily", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Date     string                    `json:"date"`
		Rankings []domain.LeaderboardEntry `json:"rankings"`
		MaxScore int                       `json:"max_score"`
		Streak   int                       `json:"streak"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2025-03-10", resp.Date)
	assert.Equal(t, 3, resp.Streak)
	require.Len(t, resp.Rankings, 1)
}

func TestDailyStats_NoSnapshotIs404(t *testing.T) {
	f := newAPI(t)

	f.mock.ExpectQuery("SELECT game_id, epoch, date, rankings").
		WithArgs("minesweeper").
		WillReturnRows(pgxmock.NewRows([]string{"game_id"}))

	w := f.do(t, http.MethodGet, "/api/v1/stats/minesweeper/daily", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListGames(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodGet, "/api/v1/games", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Games []string `json:"games"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"chess_puzzle", "minesweeper"}, resp.Games)
}

func TestHeartbeat_ExtendsSession(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodPost, "/api/v1/auth", "", `{"player_id":"p1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/heartbeat", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w2 := httptest.NewRecorder()
	f.router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var resp struct {
		OK       bool   `json:"ok"`
		PlayerID string `json:"player_id"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "p1", resp.PlayerID)
}

func TestHeartbeat_NoSession(t *testing.T) {
	f := newAPI(t)
	w := f.do(t, http.MethodPost, "/api/v1/session/heartbeat", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
