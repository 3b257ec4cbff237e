package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tapforge/clicker-server/internal/api"
	"github.com/tapforge/clicker-server/internal/api/response"
	"github.com/tapforge/clicker-server/internal/factory"
	"github.com/tapforge/clicker-server/internal/testutil"
)

// testServer wires a full router over in-memory storage with a mock clock
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T, adminKeyHash string) *testServer {
	t.Helper()

	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:             testutil.NopLogger(),
		AuthService:        app.AuthService,
		GameController:     app.GameController,
		LeaderboardService: app.LeaderboardService,
		SocialService:      app.SocialService,
		Generator:          app.Generator,
		AdminKeyHash:       adminKeyHash,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) register(t *testing.T, name string) response.RegisterResponse {
	t.Helper()
	rec := ts.request(http.MethodPost, "/register", map[string]string{"name": name}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp response.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func clickBatch(n int) map[string]any {
	actions := make([]map[string]any, n)
	for i := range actions {
		actions[i] = map[string]any{"type": "click", "data": map[string]any{}}
	}
	return map[string]any{"actions": actions}
}

func buyBatch(id string) map[string]any {
	return map[string]any{"actions": []map[string]any{
		{"type": "buy_upgrade", "data": map[string]any{"upgrade_id": id}},
	}}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

// Registration

func TestRegister(t *testing.T) {
	ts := newTestServer(t, "")

	resp := ts.register(t, "Alice")
	assert.Equal(t, "Alice", resp.Name)
	assert.NotEmpty(t, resp.Token)
}

func TestRegisterNameTaken(t *testing.T) {
	ts := newTestServer(t, "")
	ts.register(t, "Alice")

	rec := ts.request(http.MethodPost, "/register", map[string]string{"name": "Alice"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NAME_TAKEN", errorCode(t, rec))
}

func TestRegisterMissingName(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.request(http.MethodPost, "/register", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Action batches

func TestSubmitActionsRequiresToken(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.request(http.MethodPost, "/game/actions", clickBatch(1), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitActionsInvalidToken(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.request(http.MethodPost, "/game/actions", clickBatch(1), "bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestSubmitClicks(t *testing.T) {
	ts := newTestServer(t, "")
	player := ts.register(t, "Alice")
	ts.app.MockClock.Advance(time.Second)

	rec := ts.request(http.MethodPost, "/game/actions", clickBatch(5), player.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	var state response.PlayerState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, int64(5), state.Score)
}

func TestSubmitClicksRateLimited(t *testing.T) {
	ts := newTestServer(t, "")
	player := ts.register(t, "Alice")
	ts.app.MockClock.Advance(time.Second)

	rec := ts.request(http.MethodPost, "/game/actions", clickBatch(11), player.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CLICK_RATE_EXCEEDED", errorCode(t, rec))

	// Stored state is untouched by the rejected batch
	rec = ts.request(http.MethodGet, "/player_data/"+player.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state response.PlayerState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, int64(0), state.Score)
}

func TestBuyUpgradeInsufficientFunds(t *testing.T) {
	ts := newTestServer(t, "")
	player := ts.register(t, "Alice")
	ts.app.MockClock.Advance(time.Second)

	rec := ts.request(http.MethodPost, "/game/actions", buyBatch("auto_clicker"), player.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INSUFFICIENT_FUNDS", errorCode(t, rec))
}

func TestBuyUnknownUpgrade(t *testing.T) {
	ts := newTestServer(t, "")
	player := ts.register(t, "Alice")
	ts.app.MockClock.Advance(time.Second)

	rec := ts.request(http.MethodPost, "/game/actions", buyBatch("warp_drive"), player.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNKNOWN_UPGRADE", errorCode(t, rec))
}

func TestClickThenBuyInOneBatch(t *testing.T) {
	ts := newTestServer(t, "")
	player := ts.register(t, "Alice")
	ts.app.MockClock.Advance(time.Second)

	batch := clickBatch(10)
	batch["actions"] = append(batch["actions"].([]map[string]any),
		map[string]any{"type": "buy_upgrade", "data": map[string]any{"upgrade_id": "auto_clicker"}})

	rec := ts.request(http.MethodPost, "/game/actions", batch, player.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	var state response.PlayerState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, int64(0), state.Score)
	assert.Equal(t, 1, state.Upgrades["auto_clicker"])
	assert.Equal(t, int64(1), state.Sps)
}

func TestMalformedAction(t *testing.T) {
	ts := newTestServer(t, "")
	player := ts.register(t, "Alice")

	body := map[string]any{"actions": []map[string]any{{"type": "teleport"}}}
	rec := ts.request(http.MethodPost, "/game/actions", body, player.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ACTION", errorCode(t, rec))
}

// Player state

func TestPlayerDataByTokenAndName(t *testing.T) {
	ts := newTestServer(t, "")
	player := ts.register(t, "Alice")

	for _, ref := range []string{player.Token, "Alice"} {
		rec := ts.request(http.MethodGet, "/player_data/"+ref, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var state response.PlayerState
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
		assert.Equal(t, "Alice", state.Name)
	}
}

func TestPlayerDataNotFound(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.request(http.MethodGet, "/player_data/nobody", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlayerDataProjectsPassiveIncome(t *testing.T) {
	ts := newTestServer(t, "")
	player := ts.register(t, "Alice")

	// Buy an auto_clicker funded by clicks, then let time pass
	ts.app.MockClock.Advance(time.Second)
	rec := ts.request(http.MethodPost, "/game/actions", func() map[string]any {
		b := clickBatch(10)
		b["actions"] = append(b["actions"].([]map[string]any),
			map[string]any{"type": "buy_upgrade", "data": map[string]any{"upgrade_id": "auto_clicker"}})
		return b
	}(), player.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	ts.app.MockClock.Advance(30 * time.Second)

	rec = ts.request(http.MethodGet, "/player_data/"+player.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state response.PlayerState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, int64(30), state.Score)
}

// Token validity

func TestTokenValid(t *testing.T) {
	ts := newTestServer(t, "")
	player := ts.register(t, "Alice")

	rec := ts.request(http.MethodGet, "/token_valid", nil, player.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", string(bytes.TrimSpace(rec.Body.Bytes())))

	rec = ts.request(http.MethodGet, "/token_valid", nil, "bogus")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "false", string(bytes.TrimSpace(rec.Body.Bytes())))
}

// Leaderboard

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t, "")
	alice := ts.register(t, "Alice")
	ts.register(t, "Bob")

	ts.app.MockClock.Advance(time.Second)
	rec := ts.request(http.MethodPost, "/game/actions", clickBatch(5), alice.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(http.MethodGet, "/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var board response.LeaderboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	require.Len(t, board.Entries, 2)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, "Alice", board.Entries[0].Name)
	assert.Equal(t, int64(5), board.Entries[0].Score)
	assert.Equal(t, "Bob", board.Entries[1].Name)
}

// Upgrade catalog

func TestUpgradesRequiresToken(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.request(http.MethodGet, "/upgrades", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpgradesPricedForPlayer(t *testing.T) {
	ts := newTestServer(t, "")
	player := ts.register(t, "Alice")

	rec := ts.request(http.MethodGet, "/upgrades", nil, player.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog response.CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	require.NotEmpty(t, catalog.Upgrades)

	// Cheapest first, base price at level zero
	assert.Equal(t, "auto_clicker", catalog.Upgrades[0].ID)
	assert.Equal(t, 0, catalog.Upgrades[0].Level)
	assert.Equal(t, int64(10), catalog.Upgrades[0].NextCost)
}

// Suggestion box

func TestGenerateUpgrade(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.request(http.MethodPost, "/generate_upgrade", map[string]string{"theme": "lava"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var suggestion response.Suggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suggestion))
	assert.Contains(t, suggestion.Name, "lava")
	assert.NotZero(t, suggestion.BaseCost)
}

// Friends

func TestFriendsFlow(t *testing.T) {
	ts := newTestServer(t, "")
	alice := ts.register(t, "Alice")
	bob := ts.register(t, "Bob")

	rec := ts.request(http.MethodPost, "/friends/requests", map[string]string{"name": "Bob"}, alice.Token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(http.MethodGet, "/friends/requests", nil, bob.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var reqs response.FriendRequestsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reqs))
	require.Len(t, reqs.Requests, 1)
	assert.Equal(t, "Alice", reqs.Requests[0].From)

	rec = ts.request(http.MethodPost, "/friends/requests/Alice/accept", nil, bob.Token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(http.MethodGet, "/friends", nil, alice.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var friends response.FriendsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &friends))
	require.Len(t, friends.Friends, 1)
	assert.Equal(t, "Bob", friends.Friends[0].Name)
}

func TestFriendRequestToSelf(t *testing.T) {
	ts := newTestServer(t, "")
	alice := ts.register(t, "Alice")

	rec := ts.request(http.MethodPost, "/friends/requests", map[string]string{"name": "Alice"}, alice.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "SELF_FRIEND_REQUEST", errorCode(t, rec))
}

func TestFriendRequestDuplicate(t *testing.T) {
	ts := newTestServer(t, "")
	alice := ts.register(t, "Alice")
	ts.register(t, "Bob")

	rec := ts.request(http.MethodPost, "/friends/requests", map[string]string{"name": "Bob"}, alice.Token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(http.MethodPost, "/friends/requests", map[string]string{"name": "Bob"}, alice.Token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "FRIEND_REQUEST_EXISTS", errorCode(t, rec))
}

// Admin

func TestAdminDisabledWithoutKeyHash(t *testing.T) {
	ts := newTestServer(t, "")
	ts.register(t, "Alice")

	req := httptest.NewRequest(http.MethodDelete, "/admin/players/some-id", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminDeletePlayer(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	ts := newTestServer(t, string(hash))
	alice := ts.register(t, "Alice")

	// Wrong key is rejected
	req := httptest.NewRequest(http.MethodDelete, "/admin/players/"+alice.ID, nil)
	req.Header.Set("X-Admin-Key", "wrong")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/admin/players/"+alice.ID, nil)
	req.Header.Set("X-Admin-Key", "hunter2")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec2 := ts.request(http.MethodGet, "/player_data/Alice", nil, "")
	assert.Equal(t, http.StatusNotFound, rec2.Code)
}

// Health

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
