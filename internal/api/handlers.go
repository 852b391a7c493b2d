package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/obweb/internal/objectservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *objectservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *objectservice.Service) *Handler {
	return &Handler{svc: svc}
}

// urlParam returns a path parameter, decoding escapes such as %2F, which
// id tokens need since their alphabet includes '/'.
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// ListObjects handles GET /api/objects.
//
//	@Summary		List cached objects ordered by id
//	@Tags			objects
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			tag		query		string	false	"Filter by type tag"
//	@Success		200		{object}	ObjectListResponse
//	@Security		BearerAuth
//	@Router			/objects [get]
func (h *Handler) ListObjects(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.svc.ListObjects(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"), r.URL.Query().Get("tag"))
	if err != nil {
		writeError(w, "list objects", err)
		return
	}
	writeJSON(w, http.StatusOK, ObjectListResponse{Objects: items, Total: total})
}

// GetObject handles GET /api/objects/{token}.
//
//	@Summary		Get a single object by id token
//	@Tags			objects
//	@Produce		json
//	@Param			token	path		string	true	"Id token"
//	@Success		200		{object}	ObjectDetail
//	@Success		304		"Not modified"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/objects/{token} [get]
func (h *Handler) GetObject(w http.ResponseWriter, r *http.Request) {
	token := urlParam(r, "token")
	ob, err := h.svc.GetObject(r.Context(), token)
	if err != nil {
		writeError(w, "get object", err, slog.String("id", token))
		return
	}
	etag := `"` + ob.Checksum + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Trim(match, `"`) == ob.Checksum {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, ob)
}

// GetWood handles GET /api/objects/{token}/wood.
//
//	@Summary		Get the serialized form of an object
//	@Tags			objects
//	@Produce		plain
//	@Param			token	path		string	true	"Id token"
//	@Success		200		{string}	string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/objects/{token}/wood [get]
func (h *Handler) GetWood(w http.ResponseWriter, r *http.Request) {
	token := urlParam(r, "token")
	text, sum, err := h.svc.Wood(r.Context(), token)
	if err != nil {
		writeError(w, "get wood", err, slog.String("id", token))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("ETag", `"`+sum+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text + "\n"))
}

// Lineage handles GET /api/objects/{token}/lineage.
//
//	@Summary		Follow the editing priors of an object
//	@Tags			objects
//	@Produce		json
//	@Param			token	path		string	true	"Id token"
//	@Success		200		{object}	LineageResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/objects/{token}/lineage [get]
func (h *Handler) Lineage(w http.ResponseWriter, r *http.Request) {
	token := urlParam(r, "token")
	res, err := h.svc.Lineage(r.Context(), token)
	if err != nil {
		writeError(w, "lineage", err, slog.String("id", token))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Backlinks handles GET /api/objects/{token}/backlinks.
//
//	@Summary		List references pointing at an object
//	@Tags			objects
//	@Produce		json
//	@Param			token	path		string	true	"Id token"
//	@Success		200		{object}	BacklinksResponse
//	@Security		BearerAuth
//	@Router			/objects/{token}/backlinks [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	token := urlParam(r, "token")
	bl, err := h.svc.Backlinks(r.Context(), token)
	if err != nil {
		writeError(w, "backlinks", err, slog.String("id", token))
		return
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Backlinks: bl})
}

// SetShortName handles PUT /api/objects/{token}/short_name.
//
//	@Summary		Set or clear the display alias of an object
//	@Tags			objects
//	@Accept			json
//	@Param			token	path	string				true	"Id token"
//	@Param			body	body	ShortNameRequest	true	"Alias"
//	@Success		204		"Alias stored"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/objects/{token}/short_name [put]
func (h *Handler) SetShortName(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
	token := urlParam(r, "token")

	var req ShortNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.svc.SetShortName(r.Context(), token, req.ShortName); err != nil {
		writeError(w, "set short name", err, slog.String("id", token))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Names handles GET /api/names.
//
//	@Summary		List names in lexical order
//	@Tags			names
//	@Produce		json
//	@Param			prefix	query		string	false	"Name prefix"
//	@Param			limit	query		int		false	"Max names"
//	@Success		200		{object}	NamesResponse
//	@Security		BearerAuth
//	@Router			/names [get]
func (h *Handler) Names(w http.ResponseWriter, r *http.Request) {
	names := h.svc.Names(r.Context(), r.URL.Query().Get("prefix"), queryInt(r, "limit"))
	writeJSON(w, http.StatusOK, NamesResponse{Names: names})
}

// LookupName handles GET /api/names/{name}.
//
//	@Summary		Find the objects carrying a name
//	@Tags			names
//	@Produce		json
//	@Param			name	path		string	true	"Name"
//	@Param			fold	query		bool	false	"Ignore case"
//	@Success		200		{object}	LookupResponse
//	@Security		BearerAuth
//	@Router			/names/{name} [get]
func (h *Handler) LookupName(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	folded, _ := strconv.ParseBool(r.URL.Query().Get("fold"))
	ids := h.svc.LookupName(r.Context(), name, folded)
	writeJSON(w, http.StatusOK, LookupResponse{Name: name, Folded: folded, IDs: ids})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across objects
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results, err := h.svc.Search(r.Context(), q, queryInt(r, "limit"))
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Stats handles GET /api/stats.
//
//	@Summary		Store counters
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
