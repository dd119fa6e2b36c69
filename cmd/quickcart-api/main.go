// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickcart/internal/cache"
	"quickcart/internal/config"
	httptransport "quickcart/internal/http"
	"quickcart/internal/infra"
	"quickcart/internal/maps"
	"quickcart/internal/modules/assignment"
	"quickcart/internal/modules/courier"
	"quickcart/internal/modules/matching"
	"quickcart/internal/modules/order"
	"quickcart/internal/modules/servicearea"
	"quickcart/internal/modules/vendor"
	"quickcart/internal/notify"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Error("database connect failed", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	// Redis and RabbitMQ are soft dependencies: without them the service
	// keeps answering, uncached and without push notifications.
	var backend cache.Backend = cache.NullBackend{}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, running without spatial cache", "err", err)
	} else {
		backend = cache.NewRedisBackend(redisClient)
	}
	spatialCache := cache.New(backend, log)
	defer spatialCache.Close()

	var notifier notify.Notifier = notify.NewNoopNotifier(log)
	rabbit, err := infra.NewRabbit(cfg.Rabbit.URL)
	if err != nil {
		log.Warn("rabbitmq unreachable, courier notifications disabled", "err", err)
	} else {
		defer rabbit.Close()
		n, err := notify.NewRabbitNotifier(rabbit.Channel())
		if err != nil {
			log.Warn("notification queue declare failed", "err", err)
		} else {
			notifier = n
		}
	}

	var geocoder servicearea.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			log.Warn("geocoding client init failed", "err", err)
		} else {
			geocoder = g
		}
	}

	orderStore := order.NewStore(dbPool)
	courierStore := courier.NewStore(dbPool, redisClient)

	resolver := servicearea.NewResolver(servicearea.NewStore(dbPool), spatialCache, geocoder, log)
	discovery := vendor.NewDiscovery(vendor.NewStore(dbPool), spatialCache, log)
	courierSvc := courier.NewService(courierStore, orderStore, log)
	matcher := matching.NewService(orderStore, courierStore, matching.NewStore(redisClient), notifier, cfg.Matching, log)
	engine := assignment.NewEngine(courierStore, orderStore, log)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Resolver:   resolver,
		Discovery:  discovery,
		Couriers:   courierSvc,
		Matcher:    matcher,
		Assignment: engine,
		Log:        log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
