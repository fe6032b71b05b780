package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/config"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/middleware"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/openapi"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/response"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Server represents the HTTP server
type Server struct {
	router        *chi.Mux
	httpServer    *http.Server
	config        *config.Config
	products      *handler.ProductHandler
	emails        *handler.EmailHandler
	rateLimiter   *middleware.RateLimiter
	meterProvider metric.MeterProvider
	logger        *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	products *handler.ProductHandler,
	emails *handler.EmailHandler,
	rateLimiter *middleware.RateLimiter,
	meterProvider metric.MeterProvider,
	logger *slog.Logger,
) (*Server, error) {
	s := &Server{
		router:        chi.NewRouter(),
		config:        cfg,
		products:      products,
		emails:        emails,
		rateLimiter:   rateLimiter,
		meterProvider: meterProvider,
		logger:        logger,
	}

	s.setupMiddleware()
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures the middleware chain
func (s *Server) setupMiddleware() {
	meter := s.meterProvider.Meter("products-api")

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(middleware.StructuredLogger(s.logger))
	s.router.Use(middleware.Recoverer(s.logger))
	s.router.Use(chimiddleware.StripSlashes)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(middleware.HTTPRouteContext())
	s.router.Use(middleware.ActiveRequestsMiddleware(meter))
	s.router.Use(middleware.DurationMillisecondsMiddleware(meter))
}

// setupRoutes mounts the API under the versioned prefix. Trailing slashes
// are stripped before routing, so /products/ and /products both match.
func (s *Server) setupRoutes() error {
	prefix := s.config.API.Prefix()
	doc, err := openapi.Document(prefix, s.config.API.Version)
	if err != nil {
		return err
	}
	docsPage := openapi.DocsHTML(prefix + "/openapi.json")
	limit := s.rateLimiter.Limit

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, response.DetailRouteNotFound)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, response.DetailMethodNotAllowed)
	})

	s.router.Route(prefix, func(r chi.Router) {
		r.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(doc)
		})
		r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(docsPage)
		})

		r.Group(func(r chi.Router) {
			if s.config.Auth.Enabled {
				r.Use(middleware.Authenticate([]byte(s.config.Auth.JWTSecret), s.logger))
			}

			r.Route("/products", func(r chi.Router) {
				r.With(limit("products.create")).Post("/", s.products.CreateProduct)
				r.With(limit("products.list")).Get("/", s.products.ListProducts)
				r.With(limit("products.get")).Get("/{id}", s.products.GetProduct)
				r.With(limit("products.update")).Patch("/{id}", s.products.UpdateProduct)
				r.With(limit("products.delete")).Delete("/{id}", s.products.DeleteProduct)
			})

			r.With(limit("email.send")).Post("/send-email", s.emails.SendEmail)
		})
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Metrics recorded through OpenTelemetry, exposed by the Prometheus exporter
	s.router.Get("/metrics", promhttp.Handler().ServeHTTP)

	return nil
}

// Handler returns the router wrapped with otelhttp for HTTP spans and metrics
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "http-server",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithMeterProvider(s.meterProvider),
		otelhttp.WithMetricAttributesFn(func(r *http.Request) []attribute.KeyValue {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			return []attribute.KeyValue{attribute.String("http.route", route)}
		}),
	)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		slog.String("address", s.httpServer.Addr),
		slog.String("api_prefix", s.config.API.Prefix()),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
