// internal/api/handler.go
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github-portfolio-api/internal/buildinfo"
	"github-portfolio-api/internal/cache"
	custom_errors "github-portfolio-api/internal/errors"
	"github-portfolio-api/internal/model"
)

const defaultFeaturedLimit = 6

// errListingNotConfigured spells out the missing settings on the listing route.
var errListingNotConfigured = fmt.Errorf("%w. Please set GITHUB_TOKEN and GITHUB_USERNAME environment variables.", custom_errors.ErrNotConfigured)

// Upstream is the subset of the GitHub client the handlers depend on.
// Only ListRepositories can fail; the other calls degrade to empty results.
type Upstream interface {
	ListRepositories(ctx context.Context, sort string, excludeForks bool, languages []string) ([]model.Repository, error)
	RepositoryLanguages(ctx context.Context, name string) map[string]int
	RepositoryReadme(ctx context.Context, name string) *model.Readme
	PinnedRepositories(ctx context.Context) []model.Repository
}

// Handler is the container for API dependencies.
type Handler struct {
	upstream Upstream
	listing  *cache.Listing
	logger   *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
// A nil upstream means GitHub credentials are missing: every upstream-backed
// route then answers 500 while the health check keeps working.
func NewRouter(upstream Upstream, listing *cache.Listing, allowedOrigins []string, logger *slog.Logger) http.Handler {
	h := &Handler{
		upstream: upstream,
		listing:  listing,
		logger:   logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// API Routes
	r.Get("/", h.healthCheck)
	r.Route("/api", func(r chi.Router) {
		r.Get("/repositories", h.getRepositories)
		r.Get("/repositories/{name}/languages", h.getRepositoryLanguages)
		r.Get("/repositories/{name}/readme", h.getRepositoryReadme)
		r.Get("/pinned", h.getPinnedRepositories)
		r.Get("/featured", h.getFeaturedRepositories)
	})

	return r
}

type healthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	Version          string `json:"version"`
	GithubConfigured bool   `json:"github_configured"`
}

// healthCheck reports service identity and whether GitHub credentials are present.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, healthResponse{
		Status:           "healthy",
		Service:          buildinfo.ServiceName,
		Version:          buildinfo.Version,
		GithubConfigured: h.upstream != nil,
	})
}

type repositoriesResponse struct {
	Repositories []model.Repository `json:"repositories"`
	Count        int                `json:"count"`
	Cached       bool               `json:"cached"`
	LastUpdated  *time.Time         `json:"last_updated"`
}

// getRepositories serves the account's repositories from the listing cache, refreshing it when stale.
// GET /api/repositories?include_forks=&languages=&sort=&limit=&force_refresh=
func (h *Handler) getRepositories(w http.ResponseWriter, r *http.Request) {
	if h.upstream == nil {
		respondWithError(w, http.StatusInternalServerError, errListingNotConfigured.Error())
		return
	}

	q := r.URL.Query()
	includeForks := parseBool(q.Get("include_forks"))
	forceRefresh := parseBool(q.Get("force_refresh"))
	limit := parseInt(q.Get("limit"), 0)

	var languages []string
	if v := q.Get("languages"); v != "" {
		languages = strings.Split(v, ",")
	}

	sort := q.Get("sort")
	if sort == "" {
		sort = model.SortUpdated
	}
	if !model.ValidSort(sort) {
		err := &custom_errors.InvalidSortError{Sort: sort}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, fresh := h.listing.Lookup()
	cached := fresh && !forceRefresh
	if cached {
		h.logger.Info("Returning cached repository data", "fetched_at", snap.FetchedAt)
	} else {
		h.logger.Info("Fetching fresh repository data from GitHub", "force_refresh", forceRefresh)
		var err error
		snap, err = h.listing.Refresh(r.Context(), forceRefresh, func(ctx context.Context) ([]model.Repository, error) {
			return h.upstream.ListRepositories(ctx, sort, false, nil)
		})
		if err != nil {
			h.logger.Error("Failed to refresh repositories", "error", err)
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	repos := model.FilterRepositories(snap.Repositories, !includeForks, languages)
	repos = model.SortRepositories(repos, sort)
	repos = model.Limit(repos, limit)

	resp := repositoriesResponse{
		Repositories: repos,
		Count:        len(repos),
		Cached:       cached,
	}
	if !snap.FetchedAt.IsZero() {
		fetchedAt := snap.FetchedAt.UTC()
		resp.LastUpdated = &fetchedAt
	}
	respondWithJSON(w, http.StatusOK, resp)
}

type languagesResponse struct {
	Repository string         `json:"repository"`
	Languages  map[string]int `json:"languages"`
}

// getRepositoryLanguages handles the request for a repository's language breakdown.
// GET /api/repositories/{name}/languages
func (h *Handler) getRepositoryLanguages(w http.ResponseWriter, r *http.Request) {
	if h.upstream == nil {
		respondWithError(w, http.StatusInternalServerError, custom_errors.ErrNotConfigured.Error())
		return
	}

	name := chi.URLParam(r, "name")
	respondWithJSON(w, http.StatusOK, languagesResponse{
		Repository: name,
		Languages:  h.upstream.RepositoryLanguages(r.Context(), name),
	})
}

type readmeResponse struct {
	Repository string        `json:"repository"`
	Readme     *model.Readme `json:"readme"`
	Message    string        `json:"message,omitempty"`
}

// getRepositoryReadme handles the request for a repository's decoded README.
// GET /api/repositories/{name}/readme
func (h *Handler) getRepositoryReadme(w http.ResponseWriter, r *http.Request) {
	if h.upstream == nil {
		respondWithError(w, http.StatusInternalServerError, custom_errors.ErrNotConfigured.Error())
		return
	}

	name := chi.URLParam(r, "name")
	readme := h.upstream.RepositoryReadme(r.Context(), name)
	if readme == nil {
		respondWithJSON(w, http.StatusNotFound, readmeResponse{
			Repository: name,
			Message:    "README not found for this repository",
		})
		return
	}

	respondWithJSON(w, http.StatusOK, readmeResponse{Repository: name, Readme: readme})
}

type pinnedResponse struct {
	PinnedRepositories []model.PinnedRepository `json:"pinned_repositories"`
	Count              int                      `json:"count"`
}

// getPinnedRepositories handles the request for the profile's pinned repositories.
// GET /api/pinned
func (h *Handler) getPinnedRepositories(w http.ResponseWriter, r *http.Request) {
	if h.upstream == nil {
		respondWithError(w, http.StatusInternalServerError, custom_errors.ErrNotConfigured.Error())
		return
	}

	pinned := model.ToPinned(h.upstream.PinnedRepositories(r.Context()))
	respondWithJSON(w, http.StatusOK, pinnedResponse{PinnedRepositories: pinned, Count: len(pinned)})
}

type featuredResponse struct {
	FeaturedRepositories []model.FeaturedRepository `json:"featured_repositories"`
	Count                int                        `json:"count"`
}

// getFeaturedRepositories handles the request for top repositories by stars and activity.
// GET /api/featured?limit=N
func (h *Handler) getFeaturedRepositories(w http.ResponseWriter, r *http.Request) {
	if h.upstream == nil {
		respondWithError(w, http.StatusInternalServerError, custom_errors.ErrNotConfigured.Error())
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), defaultFeaturedLimit)
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}

	repos, err := h.upstream.ListRepositories(r.Context(), model.SortUpdated, true, nil)
	if err != nil {
		h.logger.Error("Failed to get featured repositories", "error", err)
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	featured := model.Featured(repos, limit)
	respondWithJSON(w, http.StatusOK, featuredResponse{FeaturedRepositories: featured, Count: len(featured)})
}

// parseBool treats only a case-insensitive "true" as true.
func parseBool(s string) bool {
	return strings.EqualFold(s, "true")
}

// parseInt returns def when s is empty or not an integer.
func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
