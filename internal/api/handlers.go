package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vaultjoin/internal/joining"
	"github.com/starford/vaultjoin/internal/joinservice"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *joinservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *joinservice.Service) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the note path from the URL (everything after /api/notes/).
// Supports encoded slashes from OpenAPI clients (e.g. people%2Fada.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// decodeJSON reads a size-limited JSON body. Numbers are kept exact.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

// GetNote handles GET /api/notes/*.
//
//	@Summary		Parse a single note by path
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.ReadNote(r.Context(), path)
	if err != nil {
		writeError(w, r, "read note failed", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// ListStrategies handles GET /api/strategies.
//
//	@Summary		List configured join strategies
//	@Tags			strategies
//	@Produce		json
//	@Success		200	{object}	StrategyListResponse
//	@Security		BearerAuth
//	@Router			/strategies [get]
func (h *Handler) ListStrategies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StrategyListResponse{Strategies: h.svc.Strategies()})
}

// Index handles GET /api/index/{strategy}.
//
//	@Summary		Index the vault by a strategy's key
//	@Tags			strategies
//	@Produce		json
//	@Param			strategy	path		string	true	"Strategy name"
//	@Success		200			{object}	IndexResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/index/{strategy} [get]
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	strategy := chi.URLParam(r, "strategy")
	entries, err := h.svc.Index(r.Context(), strategy)
	if err != nil {
		writeError(w, r, "index failed", err)
		return
	}
	writeJSON(w, http.StatusOK, IndexResponse{Strategy: strategy, Entries: entries})
}

// Duplicates handles GET /api/index/{strategy}/duplicates.
//
//	@Summary		List keys carried by more than one note
//	@Tags			strategies
//	@Produce		json
//	@Param			strategy	path		string	true	"Strategy name"
//	@Success		200			{object}	DuplicatesResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/index/{strategy}/duplicates [get]
func (h *Handler) Duplicates(w http.ResponseWriter, r *http.Request) {
	strategy := chi.URLParam(r, "strategy")
	dups, err := h.svc.Duplicates(r.Context(), strategy)
	if err != nil {
		writeError(w, r, "duplicates failed", err)
		return
	}
	writeJSON(w, http.StatusOK, DuplicatesResponse{Strategy: strategy, Duplicates: dups})
}

// Join handles POST /api/joins/{strategy}.
//
//	@Summary		Create or update the note for one domain object
//	@Tags			joins
//	@Accept			json
//	@Produce		json
//	@Param			strategy	path		string		true	"Strategy name"
//	@Param			body		body		JoinRequest	true	"Object to join"
//	@Success		200			{object}	JoinResult	"Updated"
//	@Success		201			{object}	JoinResult	"Created"
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/joins/{strategy} [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.svc.Join(r.Context(), chi.URLParam(r, "strategy"), req)
	if err != nil {
		writeError(w, r, "join failed", err)
		return
	}
	status := http.StatusOK
	if res.Outcome == joining.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// JoinBatch handles POST /api/joins/{strategy}/batch.
//
//	@Summary		Create or update notes for several domain objects
//	@Tags			joins
//	@Accept			json
//	@Produce		json
//	@Param			strategy	path		string				true	"Strategy name"
//	@Param			body		body		BatchJoinRequest	true	"Objects to join"
//	@Success		200			{object}	BatchJoinResponse
//	@Failure		400			{object}	BatchJoinResponse
//	@Security		BearerAuth
//	@Router			/joins/{strategy}/batch [post]
func (h *Handler) JoinBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchJoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	results, err := h.svc.JoinAll(r.Context(), chi.URLParam(r, "strategy"), req.Joins)
	resp := BatchJoinResponse{Results: results}
	if resp.Results == nil {
		resp.Results = []JoinResult{}
	}
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			writeError(w, r, "batch join failed", err)
			return
		}
		resp.Error = err.Error()
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Journal handles GET /api/journal.
//
//	@Summary		List recorded writes, newest first
//	@Tags			journal
//	@Produce		json
//	@Param			strategy	query		string	false	"Only writes made through this strategy"
//	@Param			key		query		string	false	"Only writes for this key"
//	@Param			limit	query		int		false	"Maximum entries"
//	@Success		200		{object}	JournalResponse
//	@Security		BearerAuth
//	@Router			/journal [get]
func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	entries, err := h.svc.History(r.Context(), q.Get("strategy"), q.Get("key"), limit)
	if err != nil {
		writeError(w, r, "journal failed", err)
		return
	}
	writeJSON(w, http.StatusOK, JournalResponse{Entries: entries})
}
