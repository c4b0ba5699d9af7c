package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xtding233/dropcalc/internal/calc"
	"github.com/xtding233/dropcalc/internal/game"
)

func intp(v int) *int { return &v }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cat, err := game.Build(game.RawConfig{
		Version: "test",
		Items: []game.ItemDef{
			{Code: "gld", Name: "Gold"},
			{Code: "hax", Name: "Hand Axe", Class: "weap", Level: 3, Rarity: 3},
			{Code: "axe", Name: "Axe", Class: "weap", Level: 3, Rarity: 1},
		},
		TreasureClasses: []game.TreasureClassDef{
			{Name: "Act 1 Equip A", Group: intp(1), Level: intp(1), Outcomes: []game.OutcomeDef{{Ref: "weap3", Weight: 21}, {Ref: "gld", Weight: 139}}},
			{Name: "Act 1 H2H A", NoDrop: intp(100), Outcomes: []game.OutcomeDef{{Ref: "Act 1 Equip A", Weight: 100}}},
		},
		Monsters: []game.MonsterDef{
			{ID: "zombie", Levels: map[string]int{"normal": 2}, TreasureClasses: map[string]string{"normal": "Act 1 H2H A"}},
		},
	})
	require.NoError(t, err)
	svc := calc.NewService(cat, calc.Options{CacheSize: 8, MaxParallel: 2}, zap.NewNop())
	return NewRouter(svc, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "trace-1")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, "trace-1", rec.Header().Get("X-Request-ID"))
}

func TestTreasureClassRoute(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/v1/tc/Act%201%20Equip%20A?mode=virtual", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res calc.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Act 1 Equip A", res.Root)
	assert.Equal(t, "virtual", res.Mode)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "gld", res.Rows[0].Outcome)
	assert.Equal(t, "139/160", res.Rows[0].Probability)
	assert.Equal(t, "63/640", res.Rows[1].Probability)
}

func TestMonsterRouteAppliesPlayers(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/v1/monster/zombie?players=3&party=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res calc.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Act 1 H2H A", res.Root)
	require.Len(t, res.Rows, 1)
	// exponent 2 turns no-drop 100 into 33: 100/133 * 21/160
	assert.Equal(t, "15/152", res.Rows[0].Probability)
}

func TestEvaluationErrors(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/tc/Act%205%20Cow", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/tc/Act%201%20Equip%20A?players=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid players")

	rec = do(t, h, http.MethodGet, "/api/v1/tc/Act%201%20Equip%20A?players=2&party=5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/tc/Act%201%20Equip%20A?difficulty=purgatory", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "difficulty")
	assert.NotEmpty(t, resp.RequestID)

	rec = do(t, h, http.MethodGet, "/api/v1/monster/cow", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluateBatchRoute(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/evaluate", `{"requests":[{"treasure_class":"Act 1 Equip A"},{"monster":"zombie","mode":"virtual"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp batchResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Act 1 Equip A", resp.Results[0].Root)
	assert.Equal(t, "Act 1 H2H A", resp.Results[1].Root)

	rec = do(t, h, http.MethodPost, "/api/v1/evaluate", `{"requests":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/evaluate", `{"requests":[{"tc":"x"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateRoute(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/v1/tc/Act%201%20Equip%20A/simulate?trials=5000&seed=3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out calc.Simulation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 5000, out.Trials)
	require.Len(t, out.Rows, 1)
	assert.InDelta(t, out.Rows[0].Exact, out.Rows[0].Observed, 0.03)

	rec = do(t, newTestRouter(t), http.MethodGet, "/api/v1/tc/Act%201%20Equip%20A/simulate?seed=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/treasureclasses?kind=virtual", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tcs []calc.TreasureClassInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tcs))
	require.Len(t, tcs, 1)
	assert.Equal(t, "weap3", tcs[0].Name)

	rec = do(t, h, http.MethodGet, "/api/v1/treasureclasses?kind=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/monsters", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"zombie"`)

	rec = do(t, h, http.MethodGet, "/api/v1/items?class=armo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodGet, "/healthz", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dropcalc_http_requests_total")
}
