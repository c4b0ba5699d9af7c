package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xtding233/dropcalc/internal/calc"
	"github.com/xtding233/dropcalc/internal/logger"
)

type Handler struct {
	svc *calc.Service
	log *zap.Logger
}

type errorResp struct {
	Err       string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

type batchReq struct {
	Requests []calc.Request `json:"requests"`
}

type batchResp struct {
	Results []*calc.Result `json:"results"`
}

const maxBatch = 64

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResp{Err: err.Error()}
	resp.RequestID, _ = logger.RequestIDFromContext(r.Context())

	var verr *calc.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	status := http.StatusInternalServerError
	switch calc.ErrorKind(err) {
	case "invalid":
		status = http.StatusBadRequest
	case "not_found":
		status = http.StatusNotFound
	case "canceled":
		status = http.StatusServiceUnavailable
	default:
		logger.FromContext(r.Context(), h.log).Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, resp)
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseBool(r *http.Request, key string) (bool, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return false, false, ""
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, "invalid " + key
	}
	return v, true, ""
}

// requestFromQuery reads the runtime modifiers shared by every evaluation
// route. An empty message means success.
func requestFromQuery(r *http.Request) (calc.Request, string) {
	q := r.URL.Query()
	req := calc.Request{
		Difficulty: q.Get("difficulty"),
		Mode:       q.Get("mode"),
		Filter:     q.Get("filter"),
		Quality:    q.Get("quality"),
	}
	for key, dst := range map[string]*int{
		"players": &req.Players,
		"party":   &req.PartySize,
		"level":   &req.Level,
		"mf":      &req.MagicFind,
	} {
		v, ok, msg := parseInt(r, key)
		if msg != "" {
			return calc.Request{}, msg
		}
		if ok {
			*dst = v
		}
	}
	upgrade, _, msg := parseBool(r, "upgrade")
	if msg != "" {
		return calc.Request{}, msg
	}
	req.AlwaysUpgrade = upgrade
	return req, ""
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.svc.Catalog().Version,
	})
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request, req calc.Request) {
	res, err := h.svc.Evaluate(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/v1/tc/{name}
func (h *Handler) handleTreasureClass(w http.ResponseWriter, r *http.Request) {
	req, msg := requestFromQuery(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: msg})
		return
	}
	req.TreasureClass = chi.URLParam(r, "name")
	h.evaluate(w, r, req)
}

// GET /api/v1/monster/{id}
func (h *Handler) handleMonster(w http.ResponseWriter, r *http.Request) {
	req, msg := requestFromQuery(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: msg})
		return
	}
	req.Monster = chi.URLParam(r, "id")
	h.evaluate(w, r, req)
}

// GET /api/v1/tc/{name}/simulate?trials=N&seed=S
func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req, msg := requestFromQuery(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: msg})
		return
	}
	req.TreasureClass = chi.URLParam(r, "name")

	trials, ok, msg := parseInt(r, "trials")
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: msg})
		return
	}
	if !ok {
		trials = 10000
	}
	var seed uint64
	if s := r.URL.Query().Get("seed"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid seed"})
			return
		}
		seed = v
	}

	out, err := h.svc.Simulate(r.Context(), req, trials, seed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/v1/evaluate with {"requests": [...]}
func (h *Handler) handleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var body batchReq
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid JSON body: " + err.Error()})
		return
	}
	if len(body.Requests) == 0 || len(body.Requests) > maxBatch {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: "requests must hold 1 to " + strconv.Itoa(maxBatch) + " entries"})
		return
	}
	results, err := h.svc.EvaluateBatch(r.Context(), body.Requests)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResp{Results: results})
}

// GET /api/v1/treasureclasses?kind=defined|virtual
func (h *Handler) handleListTreasureClasses(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	switch kind {
	case "", "defined", "virtual":
	default:
		writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid kind"})
		return
	}
	writeJSON(w, http.StatusOK, h.svc.TreasureClasses(kind))
}

func (h *Handler) handleListMonsters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Monsters())
}

// GET /api/v1/items?class=weap
func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Items(r.URL.Query().Get("class")))
}
