package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/ironstar-io/chizerolog"
	"github.com/rs/zerolog"

	"github.com/librediet/librediet-api/api/foods"
	"github.com/librediet/librediet-api/api/goals"
	"github.com/librediet/librediet-api/api/meals"
	"github.com/librediet/librediet-api/api/reports"
	"github.com/librediet/librediet-api/api/templates"
	"github.com/librediet/librediet-api/api/uploads"
	"github.com/librediet/librediet-api/db/mongo"
	"github.com/librediet/librediet-api/nutrition/openfoodfacts"
	"github.com/librediet/librediet-api/report"
	"github.com/librediet/librediet-api/resolver"
	"github.com/librediet/librediet-api/upload/s3"
)

// APIServer is a struct that bundles together the various server-wide
// resources used at runtime that each have
// a lifecycle of initialization, connection, and disconnection
type APIServer struct {
	dbProvider      *mongo.Provider
	nutritionClient *openfoodfacts.Client
	uploadProvider  *s3.Provider
	logger          zerolog.Logger
}

// NewAPIServer initializes the struct and all constituent components
func NewAPIServer(logger zerolog.Logger) (*APIServer, error) {
	// Initialize the MongoDB handler
	dbProvider, err := mongo.NewProvider()
	if err != nil {
		return nil, err
	}

	// Initialize the Open Food Facts client
	nutritionClient, err := openfoodfacts.NewClient()
	if err != nil {
		return nil, err
	}

	// Initialize the S3 upload provider
	uploadProvider, err := s3.NewProvider()
	if err != nil {
		return nil, err
	}

	return &APIServer{
		dbProvider:      dbProvider,
		nutritionClient: nutritionClient,
		uploadProvider:  uploadProvider,
		logger:          logger,
	}, nil
}

// Connect initializes the connections to all downstream services
func (a *APIServer) Connect(ctx context.Context) error {
	// Connect to the MongoDB database
	log.Println("initializing MongoDB database provider")
	err := a.dbProvider.Connect(ctx)
	if err != nil {
		log.Println("could not connect to the database")
		return err
	}
	log.Println("successfully connected to and pinged the database")

	return nil
}

// Disconnect tears down the connections to all downstream services
func (a *APIServer) Disconnect(ctx context.Context) error {
	err := a.dbProvider.Disconnect(ctx)
	if err != nil {
		log.Println("could not disconnect from the database")
		return err
	}
	log.Println("disconnected from the database")

	return nil
}

// Serve runs the main API server until it's cancelled for some reason,
// in which case it attempts to gracefully shutdown.
// This function blocks.
func (a *APIServer) Serve(ctx context.Context, port int) {
	router := a.routes()
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
	log.Printf("API server started; serving on port %d\n", port)

	<-ctx.Done()
	log.Println("API server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer func() {
		cancel()
	}()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("API server shutdown failed: %+v", err)
	}
	log.Println("API server exited properly")
}

func (a *APIServer) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.Recoverer,                          // Recover from panics without crashing the server
		chizerolog.LoggerMiddleware(&a.logger),        // Log API request calls
		middleware.RedirectSlashes,                    // Redirect slashes to no slash URL versions
		render.SetContentType(render.ContentTypeJSON), // Set content-type headers to application/json
		middleware.Compress(5),                        // Compress results, mostly gzipping assets and json
		middleware.NoCache,                            // Prevent clients from caching the results
		a.corsMiddleware(),                            // Create cors middleware from go-chi/cors
	)

	// The resolver and aggregator sit between the routes
	// and the shared providers
	foodResolver := resolver.NewResolver(a.dbProvider, a.nutritionClient)
	aggregator := report.NewAggregator(a.dbProvider)

	// ==============================
	// Add all routes to the API here
	// ==============================
	router.Route("/v1", func(r chi.Router) {
		// Can be used for health checks
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(204)
		})

		r.Mount("/foods", foods.Routes(a.dbProvider, foodResolver))
		r.Mount("/meals", meals.Routes(a.dbProvider, aggregator))
		r.Mount("/templates", templates.Routes(a.dbProvider))
		r.Mount("/goals", goals.Routes(a.dbProvider, aggregator))
		r.Mount("/reports", reports.Routes(a.dbProvider))
		r.Mount("/uploads", uploads.Routes(a.uploadProvider))
	})

	return router
}

func (a *APIServer) corsMiddleware() func(http.Handler) http.Handler {
	// See if the CORS_ALLOWED_ORIGINS environment variable was set
	allowedOrigins := "*"
	if value, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		allowedOrigins = value
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
