package tastebase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Server wires HTTP routing, middleware, and handlers over the services.
type Server struct {
	cfg         Config
	rdb         *redis.Client
	restaurants *RestaurantService
	cuisines    *CuisineService
	weather     *WeatherService
	logger      Logger
	metrics     Metrics
	router      chi.Router
	httpSrv     *http.Server
}

// NewServer constructs the HTTP server with base middleware and routes.
func NewServer(cfg Config, rdb *redis.Client, restaurants *RestaurantService, cuisines *CuisineService, weather *WeatherService, logger Logger, metrics Metrics) *Server {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if metrics == nil {
		metrics = &NoOpMetrics{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		cfg:         cfg,
		rdb:         rdb,
		restaurants: restaurants,
		cuisines:    cuisines,
		weather:     weather,
		logger:      logger,
		metrics:     metrics,
		router:      r,
	}
	r.Use(s.instrument)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	if pm, ok := s.metrics.(*PrometheusMetrics); ok {
		s.router.Handle("/metrics", promhttp.HandlerFor(pm.Registry(), promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/cuisines", func(r chi.Router) {
			r.Get("/", s.handleListCuisines)
			r.Get("/{cuisine}", s.handleCuisineRestaurants)
		})
		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", s.handleListRestaurants)
			r.Post("/", s.handleCreateRestaurant)
			r.Get("/search", s.handleSearchRestaurants)
			r.Route("/{restaurantId}", func(r chi.Router) {
				r.Use(s.requireRestaurant)
				r.Get("/", s.handleGetRestaurant)
				r.Get("/weather", s.handleGetWeather)
				r.Post("/details", s.handleSetDetails)
				r.Get("/details", s.handleGetDetails)
				r.Route("/reviews", func(r chi.Router) {
					r.Post("/", s.handleCreateReview)
					r.Get("/", s.handleListReviews)
					r.Delete("/{reviewId}", s.handleDeleteReview)
				})
			})
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is canceled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	s.logger.Info("server listening", "port", s.cfg.Port)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// instrument counts and times every request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.metrics.Increment(MetricHTTPRequests)
		s.metrics.Timing(MetricHTTPDuration, time.Since(start))
	})
}

// requireRestaurant rejects requests whose restaurantId has no record before
// the handler runs.
func (s *Server) requireRestaurant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "restaurantId")
		if id == "" {
			respondError(w, http.StatusNotFound, "Restaurant not found")
			return
		}
		exists, err := s.restaurants.Exists(r.Context(), id)
		if err != nil {
			s.respondErr(w, err)
			return
		}
		if !exists {
			respondError(w, http.StatusNotFound, "Restaurant not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.rdb.Ping(ctx).Err(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	respondSuccess(w, map[string]string{"status": "ok"}, "")
}
