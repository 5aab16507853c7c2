package service

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	chainService "option_chain/internal/modules/chain/service"
)

const maxBody = 64 << 10

type apiRoute struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// Handlers — HTTP-поверхность цепочки.
type Handlers struct {
	log   *zap.Logger
	chain *chainService.Service
	push  *Push
}

func NewHandlers(log *zap.Logger, chain *chainService.Service, push *Push) *Handlers {
	return &Handlers{log: log, chain: chain, push: push}
}

func (h *Handlers) routes() []apiRoute {
	return []apiRoute{
		{Path: "/chain", Method: http.MethodGet, Handler: h.GetChain},
		{Path: "/chain/table", Method: http.MethodGet, Handler: h.GetTable},
		{Path: "/formula", Method: http.MethodGet, Handler: h.GetFormula},
		{Path: "/formula", Method: http.MethodPut, Handler: h.PutFormula},
		{Path: "/resync", Method: http.MethodPost, Handler: h.PostResync},
		{Path: "/ws", Method: http.MethodGet, Handler: h.push.ServeHTTP},
	}
}

// NewRouter собирает /api/v1 и оборачивает в zstd.
func (h *Handlers) NewRouter() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	for _, r := range h.routes() {
		api.HandleFunc(r.Path, r.Handler).Methods(r.Method)
	}
	return ZstdMiddleware(router)
}

// formulaParam — ?formula= переопределяет сохранённую формулу только для ответа.
func (h *Handlers) formulaParam(r *http.Request) string {
	q := r.URL.Query()
	if q.Has("formula") {
		return q.Get("formula")
	}
	return h.chain.Formula()
}

func (h *Handlers) GetChain(w http.ResponseWriter, r *http.Request) {
	view := h.chain.View(r.Context(), h.formulaParam(r))
	h.writeJSON(w, http.StatusOK, ToDTO(view))
}

func (h *Handlers) GetTable(w http.ResponseWriter, r *http.Request) {
	view := h.chain.View(r.Context(), h.formulaParam(r))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, chainService.Table(view))
}

func (h *Handlers) GetFormula(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, FormulaDTO{Formula: h.chain.Formula()})
}

func (h *Handlers) PutFormula(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	var req FormulaDTO
	if err := sonic.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	h.chain.SetFormula(req.Formula)
	h.writeJSON(w, http.StatusOK, FormulaDTO{Formula: h.chain.Formula()})
}

func (h *Handlers) PostResync(w http.ResponseWriter, r *http.Request) {
	h.chain.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		h.log.Error("[API] marshal response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
