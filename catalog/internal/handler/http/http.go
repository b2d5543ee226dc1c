package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cinelogapp/cinelog/catalog/internal/controller/catalog"
	"github.com/cinelogapp/cinelog/catalog/internal/controller/feed"
	"github.com/cinelogapp/cinelog/catalog/pkg/model"
)

// Handler exposes the catalog and discovery engines over HTTP.
type Handler struct {
	catalog *catalog.Controller
	feed    *feed.Controller
	logger  *zap.Logger
}

func New(catalogCtrl *catalog.Controller, feedCtrl *feed.Controller, logger *zap.Logger) *Handler {
	return &Handler{catalog: catalogCtrl, feed: feedCtrl, logger: logger}
}

// Routes mounts all catalog endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/catalog", h.catalogState)
	r.Post("/catalog/filter", h.selectFilter)
	r.Post("/catalog/next", h.loadNextPage)
	r.Get("/feed", h.feedState)
	r.Post("/feed/start", h.startFeed)
	r.Post("/feed/reset", h.resetFeed)
	r.Post("/feed/next", h.consumeNext)
	return r
}

func (h *Handler) catalogState(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.State())
}

func (h *Handler) selectFilter(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Filter string `json:"filter"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	f, err := model.ParseFilter(body.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.catalog.SelectFilter(req.Context(), f); err != nil && !errors.Is(err, catalog.ErrUnknownFilter) {
		// Accumulated state is already reset; the first page just failed
		// and can be retried. Report the state with its error attached.
		h.logger.Warn("First page fetch failed after filter switch", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, h.catalog.State())
}

func (h *Handler) loadNextPage(w http.ResponseWriter, req *http.Request) {
	if err := h.catalog.LoadNextPage(req.Context()); err != nil {
		h.logger.Warn("Page load failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, h.catalog.State())
}

func (h *Handler) feedState(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, h.feed.State())
}

func (h *Handler) startFeed(w http.ResponseWriter, req *http.Request) {
	if err := h.feed.Start(req.Context()); err != nil {
		h.logger.Warn("Feed start failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, h.feed.State())
}

func (h *Handler) resetFeed(w http.ResponseWriter, req *http.Request) {
	if err := h.feed.Reset(req.Context()); err != nil {
		h.logger.Warn("Feed reset failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, h.feed.State())
}

func (h *Handler) consumeNext(w http.ResponseWriter, req *http.Request) {
	var body struct {
		// Accepted for forward compatibility; both directions consume
		// the head identically.
		Direction string `json:"direction"`
	}
	_ = json.NewDecoder(req.Body).Decode(&body)

	movie, ok := h.feed.ConsumeNext(req.Context())
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("feed is empty"))
		return
	}
	h.logger.Debug("Consumed feed item",
		zap.String("movieId", string(movie.ID)), zap.String("direction", body.Direction))
	writeJSON(w, http.StatusOK, movie)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
