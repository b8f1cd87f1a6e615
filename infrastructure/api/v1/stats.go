package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/infrastructure/api/jsonapi"
	"github.com/groupnom/overture-import/infrastructure/api/middleware"
)

// DefaultStatesLimit is the number of states listed when no limit is given.
const DefaultStatesLimit = 60

// StatsRouter handles restaurant statistics endpoints.
type StatsRouter struct {
	restaurants place.Reader
	serializer  *jsonapi.Serializer
	logger      *slog.Logger
}

// NewStatsRouter creates a new StatsRouter.
func NewStatsRouter(restaurants place.Reader, serializer *jsonapi.Serializer, logger *slog.Logger) *StatsRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsRouter{restaurants: restaurants, serializer: serializer, logger: logger}
}

// Routes returns the chi router for statistics endpoints.
func (r *StatsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.Get)
	return router
}

// Get handles GET /api/v1/stats. It lists restaurant counts per state,
// largest first, with the overall total in meta.
func (r *StatsRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	limit := DefaultStatesLimit
	if s := req.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			middleware.WriteError(w, req, middleware.NewBadRequest("limit must be a positive integer"), r.logger)
			return
		}
		limit = n
	}

	total, err := r.restaurants.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	states, err := r.restaurants.CountByState(ctx, limit)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.StateCountResources(states))
	doc.Meta = &jsonapi.Meta{"total_restaurants": total}
	middleware.WriteJSON(w, http.StatusOK, doc)
}
