package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gestfood/digital-menu/api/controllers"
	"github.com/gestfood/digital-menu/api/routes"
	"github.com/gestfood/digital-menu/internal/cart"
	"github.com/gestfood/digital-menu/internal/catalog"
	"github.com/gestfood/digital-menu/internal/checkout"
	"github.com/gestfood/digital-menu/internal/orders"
	"github.com/gestfood/digital-menu/internal/payment"
	"github.com/gestfood/digital-menu/internal/seating"
	"github.com/gestfood/digital-menu/internal/session"
	"github.com/gestfood/digital-menu/internal/theme"
	"github.com/gestfood/digital-menu/pkg/config"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/metrics"
	"github.com/gestfood/digital-menu/pkg/restclient"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithDeviceID(ctx, cfg.Device.ID)

	store, err := openStore(ctx, cfg, logg)
	requireResource(ctx, logg, "local store", err)
	defer func() {
		if err := store.close(); err != nil {
			logg.Error(context.Background(), "error closing local store", err)
		}
	}()

	var (
		registerer prometheus.Registerer
		gatherer   prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		registerer, gatherer = registry, registry
	}

	client, err := restclient.New(cfg.Backend.BaseURL,
		restclient.WithTimeout(cfg.Backend.Timeout),
		restclient.WithLogger(logg),
		restclient.WithMetrics(metrics.NewBackendMetrics(registerer)),
	)
	requireResource(ctx, logg, "backend client", err)

	cartStore, err := cart.NewStore(store.kv, logg)
	requireResource(ctx, logg, "cart store", err)
	cartStore.Load(ctx)

	sessionStore, err := session.NewStore(store.kv, logg)
	requireResource(ctx, logg, "session store", err)
	requireResource(ctx, logg, "session restore", sessionStore.Load(ctx))

	themeStore, err := theme.NewStore(store.kv, logg)
	requireResource(ctx, logg, "theme store", err)

	orderService, err := orders.NewService(client, logg)
	requireResource(ctx, logg, "order service", err)

	catalogService, err := catalog.NewService(client, logg)
	requireResource(ctx, logg, "catalog service", err)

	seatingService, err := seating.NewService(catalogService.Clients, catalogService.Desks, sessionStore, logg)
	requireResource(ctx, logg, "seating service", err)

	machine, err := checkout.NewMachine(checkout.Params{
		Cart:     cartStore,
		Session:  sessionStore,
		Orders:   orderService,
		Payments: payment.NewSimulator(cfg.Payment),
		Metrics:  metrics.NewCheckoutMetrics(registerer),
		Logger:   logg,
	})
	requireResource(ctx, logg, "checkout machine", err)

	ready := map[string]controllers.Pinger{}
	if store.pinger != nil {
		ready["store"] = store.pinger
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Cart:     cartStore,
			Checkout: machine,
			Session:  sessionStore,
			Seating:  seatingService,
			Orders:   orderService,
			Menu:     catalogService.Products,
			Theme:    themeStore,
			Ready:    ready,
			Gatherer: gatherer,
		}),
	}

	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"store_driver": cfg.Store.Driver,
		"backend":      cfg.Backend.BaseURL,
	})
	logg.Info(serverCtx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(serverCtx, "graceful shutdown failed", err)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
