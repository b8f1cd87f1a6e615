package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/groupnom/overture-import/domain/importrun"
	"github.com/groupnom/overture-import/domain/store"
	"github.com/groupnom/overture-import/infrastructure/api/jsonapi"
	"github.com/groupnom/overture-import/infrastructure/api/middleware"
)

// RunsRouter handles import run endpoints.
type RunsRouter struct {
	runs       importrun.Store
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewRunsRouter creates a new RunsRouter.
func NewRunsRouter(runs importrun.Store, serializer *jsonapi.Serializer, logger *slog.Logger) *RunsRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunsRouter{runs: runs, serializer: serializer, logger: logger}
}

// Routes returns the chi router for run endpoints.
func (r *RunsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.List)
	router.Get("/{id}", r.Get)
	return router
}

// List handles GET /api/v1/runs.
// Supports query parameters: status, page, page_size.
func (r *RunsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var filters []store.Option
	if s := req.URL.Query().Get("status"); s != "" {
		status := importrun.Status(s)
		if !status.Valid() {
			middleware.WriteError(w, req, middleware.NewBadRequest("status must be one of running, completed, failed"), r.logger)
			return
		}
		filters = append(filters, importrun.WithStatus(status))
	}

	total, err := r.runs.Count(ctx, filters...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	pagination := ParsePagination(req)
	options := make([]store.Option, 0, len(filters)+4)
	options = append(options, filters...)
	options = append(options, importrun.NewestFirst(), store.WithOrderDesc("id"))
	options = append(options, pagination.Options()...)
	runs, err := r.runs.Find(ctx, options...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.RunResources(runs))
	doc.Meta = PaginationMeta(pagination, total)
	doc.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// Get handles GET /api/v1/runs/{id}.
func (r *RunsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteError(w, req, middleware.NewBadRequest("run id must be a positive integer"), r.logger)
		return
	}

	run, err := r.runs.FindOne(req.Context(), store.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.RunResource(run)))
}
