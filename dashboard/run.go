// Copyright 2025 AgentDash
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"agentdash/platform/backends"
	"agentdash/platform/service"
	"agentdash/platform/shared/logger"
	"agentdash/platform/tenant"
)

// Prometheus metrics
var (
	promRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdash_requests_total",
			Help: "Total number of requests processed by the dashboard",
		},
		[]string{"handler", "status"},
	)
	promRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentdash_request_duration_milliseconds",
			Help:    "Request duration in milliseconds",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000},
		},
		[]string{"handler"},
	)
)

func init() {
	prometheus.MustRegister(promRequestsTotal)
	prometheus.MustRegister(promRequestDuration)
}

// App wires the registry, cache, and factory together and owns the HTTP
// surface. Everything is injected explicitly so tests can run the whole
// stack against fake tenants.
type App struct {
	Registry *tenant.Registry
	Cache    *backends.Cache
	Factory  *service.Factory
	Router   *mux.Router

	log          *logger.Logger
	jwtSecret    []byte
	demoEmail    string
	demoPassword string
}

// AppOptions holds dependencies for constructing an App.
type AppOptions struct {
	Registry     *tenant.Registry
	Cache        *backends.Cache
	Logger       *logger.Logger
	JWTSecret    []byte
	DemoEmail    string
	DemoPassword string
}

// NewApp constructs the application with its routes registered.
func NewApp(opts AppOptions) *App {
	appLog := opts.Logger
	if appLog == nil {
		appLog = logger.New("dashboard")
	}

	cache := opts.Cache
	if cache == nil {
		cache = backends.NewCache(backends.CacheOptions{Registry: opts.Registry})
	}

	demoEmail := opts.DemoEmail
	if demoEmail == "" {
		demoEmail = "demo@agentdash.io"
	}
	demoPassword := opts.DemoPassword
	if demoPassword == "" {
		demoPassword = "demo1234"
	}

	app := &App{
		Registry:     opts.Registry,
		Cache:        cache,
		Factory:      service.NewFactory(opts.Registry, cache, appLog),
		log:          appLog,
		jwtSecret:    opts.JWTSecret,
		demoEmail:    demoEmail,
		demoPassword: demoPassword,
	}

	app.Router = app.buildRouter()
	return app
}

// buildRouter registers all routes. Data routes sit behind the auth
// middleware; health, metrics, and login do not.
func (a *App) buildRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", a.healthHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/api/auth/login", a.loginHandler).Methods("POST")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(a.authMiddleware)
	api.HandleFunc("/agents/{agentId}", a.instrument("get_agent", a.getAgentHandler)).Methods("GET")
	api.HandleFunc("/agents/{agentId}/health", a.instrument("agent_health", a.agentHealthHandler)).Methods("GET")
	api.HandleFunc("/agents/{agentId}/leads/{leadId}/brain", a.instrument("get_brain_data", a.getBrainDataHandler)).Methods("GET")

	return router
}

// instrument records per-handler request duration.
func (a *App) instrument(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		promRequestDuration.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// healthHandler reports service liveness plus tenant registry size.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"service":   "agentdash",
		"tenants":   a.Registry.Count(),
		"handles":   a.Cache.Count(),
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// Run is the exported entry point for the dashboard service. It loads the
// tenant registry, builds the app, and serves until SIGINT/SIGTERM, then
// drains in-flight requests and disconnects all cached backend handles.
func Run() {
	// Local development convenience; absence is not an error
	_ = godotenv.Load()

	appLog := logger.New("dashboard")

	registry, err := loadRegistry(context.Background(), appLog)
	if err != nil {
		log.Fatalf("Failed to load tenant registry: %v", err)
	}
	appLog.Info("", "", "Tenant registry loaded", map[string]interface{}{
		"tenants": registry.Count(),
		"agents":  registry.AgentIDs(),
	})

	app := NewApp(AppOptions{
		Registry:     registry,
		Logger:       appLog,
		JWTSecret:    []byte(os.Getenv("JWT_SECRET")),
		DemoEmail:    os.Getenv("DEMO_EMAIL"),
		DemoPassword: os.Getenv("DEMO_PASSWORD"),
	})

	port := getEnv("PORT", "8080")

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      corsWrapper.Handler(app.Router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		appLog.Info("", "", "AgentDash starting", map[string]interface{}{"port": port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	appLog.Info("", "", "Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("", "", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	app.Cache.DisconnectAll(shutdownCtx)
	appLog.Info("", "", "Shutdown complete", nil)
}

// loadRegistry builds the tenant registry from the optional tenants file
// plus environment entries (env wins), resolving secret-store credential
// references when enabled.
func loadRegistry(ctx context.Context, appLog *logger.Logger) (*tenant.Registry, error) {
	var configs []*tenant.Config

	if path := os.Getenv("TENANTS_FILE"); path != "" {
		fileConfigs, err := tenant.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		configs = append(configs, fileConfigs...)
	}

	envConfigs, errs := tenant.LoadAllFromEnv()
	for _, err := range errs {
		appLog.Warn("", "", "Skipping misconfigured tenant", map[string]interface{}{"error": err.Error()})
	}
	configs = append(configs, envConfigs...)

	if os.Getenv("TENANT_SECRETS_ENABLED") == "true" {
		resolver, err := tenant.NewSecretsResolver(ctx, tenant.SecretsResolverOptions{
			Region: os.Getenv("AWS_REGION"),
		})
		if err != nil {
			return nil, err
		}
		for _, rerr := range resolver.ResolveConfigs(ctx, configs) {
			appLog.Error("", "", "Secret resolution failed", map[string]interface{}{"error": rerr.Error()})
		}
	}

	return tenant.NewRegistry(configs...), nil
}

// getEnv returns an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
