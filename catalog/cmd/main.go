package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cinelogapp/cinelog/catalog/internal/controller/catalog"
	"github.com/cinelogapp/cinelog/catalog/internal/controller/feed"
	imdbgateway "github.com/cinelogapp/cinelog/catalog/internal/gateway/imdb/http"
	omdbgateway "github.com/cinelogapp/cinelog/catalog/internal/gateway/omdb/http"
	tmdbgateway "github.com/cinelogapp/cinelog/catalog/internal/gateway/tmdb/http"
	httphandler "github.com/cinelogapp/cinelog/catalog/internal/handler/http"
	"github.com/cinelogapp/cinelog/catalog/pkg/model"
	"github.com/cinelogapp/cinelog/internal/httputil"
	"github.com/cinelogapp/cinelog/pkg/discovery"
	"github.com/cinelogapp/cinelog/pkg/discovery/consul"
	"github.com/cinelogapp/cinelog/pkg/metrics"
	"github.com/cinelogapp/cinelog/pkg/tracing"
)

const serviceName = "catalog"

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	f, err := os.Open("configs/catalog.yaml")
	if err != nil {
		logger.Fatal("Failed to open configuration", zap.Error(err))
	}
	var cfg config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		logger.Fatal("Failed to parse configuration", zap.Error(err))
	}
	port := cfg.API.Port
	logger.Info("Starting the catalog service", zap.Int("port", port))

	registry, err := consul.NewRegistry(cfg.ServiceDiscovery.Consul.Address)
	if err != nil {
		logger.Fatal("Failed to init catalog service registry", zap.Error(err))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracer, tracerCloser, err := tracing.NewTracer(serviceName, cfg.Jaeger.Host, cfg.Jaeger.Port, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Jaeger tracer", zap.Error(err))
	}
	defer tracerCloser.Close()
	opentracing.SetGlobalTracer(tracer)

	instanceID := discovery.GenerateInstanceID(serviceName)
	if err := registry.Register(ctx, instanceID, serviceName, fmt.Sprintf("localhost:%d", port)); err != nil {
		logger.Fatal("Failed to register service", zap.Error(err))
	}
	go func() {
		for {
			if err := registry.ReportHealthyState(instanceID, serviceName); err != nil {
				log.Println("Failed to report healthy state: " + err.Error())
			}
			time.Sleep(1 * time.Second)
		}
	}()
	defer registry.Deregister(ctx, instanceID, serviceName)

	scope, metricsHandler, metricsCloser := metrics.NewScope(serviceName)
	defer metricsCloser.Close()

	tmdbClient := httputil.New("tmdb", 20, 40)
	trending := tmdbgateway.New(cfg.Providers.Tmdb.Address, cfg.Providers.Tmdb.Token, tmdbgateway.FeedTrending, tmdbClient, logger)
	popular := tmdbgateway.New(cfg.Providers.Tmdb.Address, cfg.Providers.Tmdb.Token, tmdbgateway.FeedPopular, tmdbClient, logger)
	discover := tmdbgateway.New(cfg.Providers.Tmdb.Address, cfg.Providers.Tmdb.Token, tmdbgateway.FeedDiscover, tmdbClient, logger)
	topRated := imdbgateway.New(cfg.Providers.Imdb.Address, httputil.New("imdb", 10, 20), logger)
	nowPlaying := omdbgateway.New(cfg.Providers.Omdb.Address, cfg.Providers.Omdb.APIKey, cfg.Providers.Omdb.Query, httputil.New("omdb", 10, 20), logger)

	catalogCtrl := catalog.New(map[model.Filter]catalog.Provider{
		model.FilterTrending:   trending,
		model.FilterPopular:    popular,
		model.FilterTopRated:   topRated,
		model.FilterNowPlaying: nowPlaying,
	}, cfg.Catalog.MaxPages, logger, scope)
	feedCtrl := feed.New(discover, cfg.Feed.LowWatermark, logger, scope)
	h := httphandler.New(catalogCtrl, feedCtrl, logger)

	router := chi.NewRouter()
	router.Mount("/", h.Routes())
	router.Method(http.MethodGet, "/metrics", metricsHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: router,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-sigChan
		logger.Info("Received signal, attempting graceful shutdown", zap.Any("signal", s))
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Failed to serve HTTP server", zap.Error(err))
	}
	wg.Wait()
}
