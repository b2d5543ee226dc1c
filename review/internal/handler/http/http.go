package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cinelogapp/cinelog/internal/auth/session"
	catalogmodel "github.com/cinelogapp/cinelog/catalog/pkg/model"
	"github.com/cinelogapp/cinelog/review/internal/controller/review"
	"github.com/cinelogapp/cinelog/review/pkg/model"
)

// Handler exposes review aggregation and submission over HTTP.
type Handler struct {
	ctrl     *review.Controller
	sessions *session.Verifier
	logger   *zap.Logger
}

func New(ctrl *review.Controller, sessions *session.Verifier, logger *zap.Logger) *Handler {
	return &Handler{ctrl: ctrl, sessions: sessions, logger: logger}
}

// Routes mounts all review endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/movies/{movieId}/reviews", h.getAggregatedView)
	r.Post("/movies/{movieId}/reviews", h.submit)
	r.Get("/users/{userId}/reviews", h.getByAuthor)
	return r
}

func (h *Handler) getAggregatedView(w http.ResponseWriter, req *http.Request) {
	movieID := catalogmodel.MovieID(chi.URLParam(req, "movieId"))
	order := model.OrderCreatedAsc
	if req.URL.Query().Get("order") == "newest" {
		order = model.OrderNewestFirst
	}
	view, err := h.ctrl.GetAggregatedView(req.Context(), movieID, order)
	if err != nil {
		h.logger.Warn("Aggregation failed", zap.String("movieId", string(movieID)), zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) getByAuthor(w http.ResponseWriter, req *http.Request) {
	authorID := model.UserID(chi.URLParam(req, "userId"))
	reviews, err := h.ctrl.GetByAuthor(req.Context(), authorID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) submit(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Rating    float64 `json:"rating"`
		Comment   string  `json:"comment"`
		PosterRef string  `json:"posterRef"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	actorID, err := h.sessions.ActorID(bearerToken(req))
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	movieID := catalogmodel.MovieID(chi.URLParam(req, "movieId"))
	view, err := h.ctrl.Submit(req.Context(), model.UserID(actorID), movieID, body.Rating, body.Comment, body.PosterRef)
	switch {
	case errors.Is(err, review.ErrValidation):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, review.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err)
	case err != nil:
		h.logger.Warn("Submission failed", zap.String("movieId", string(movieID)), zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
	default:
		writeJSON(w, http.StatusCreated, view)
	}
}

func bearerToken(req *http.Request) string {
	return strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
