package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"requisition/internal/config"
	"requisition/internal/events"
	httpapi "requisition/internal/http"
	"requisition/internal/repository"
	"requisition/internal/service"

	_ "requisition/docs"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "main").Logger()

// @title Requisition API
// @version 1.0
// @description Internal materials ordering: catalog, cart, orders and fulfillment.
// @BasePath /api/v1
func main() {
	app := &cli.App{
		Name:  "requisition",
		Usage: "internal materials ordering service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":9091", EnvVars: []string{"REQ_ADDR"}, Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "store", Value: config.StoreMemory, EnvVars: []string{"REQ_STORE"}, Usage: "memory or redis"},
			&cli.StringFlag{Name: "redis-addr", Value: "localhost:6379", EnvVars: []string{"REDIS_ADDR"}},
			&cli.StringFlag{Name: "feed", Value: config.FeedPush, EnvVars: []string{"REQ_FEED"}, Usage: "push or poll"},
			&cli.DurationFlag{Name: "poll-interval", Value: 5 * time.Second, EnvVars: []string{"REQ_POLL"}},
			&cli.StringFlag{Name: "kafka-brokers", EnvVars: []string{"KAFKA_BROKERS"}, Usage: "comma separated, empty disables events"},
			&cli.StringFlag{Name: "kafka-topic", Value: "order-topic", EnvVars: []string{"KAFKA_TOPIC"}},
			&cli.StringSliceFlag{Name: "roster", EnvVars: []string{"REQ_ROSTER"}, Usage: "staff names allowed to log in"},
			&cli.StringFlag{Name: "admin-name", Value: "admin", EnvVars: []string{"REQ_ADMIN"}},
			&cli.Float64Flag{Name: "rate", Value: 20, EnvVars: []string{"REQ_RATE"}, Usage: "requests per second per client, 0 disables"},
			&cli.IntFlag{Name: "burst", Value: 40, EnvVars: []string{"REQ_BURST"}},
		},
		Action: func(c *cli.Context) error {
			return run(config.Config{
				Addr:         c.String("addr"),
				Store:        c.String("store"),
				RedisAddr:    c.String("redis-addr"),
				Feed:         c.String("feed"),
				PollInterval: c.Duration("poll-interval"),
				KafkaBrokers: c.String("kafka-brokers"),
				KafkaTopic:   c.String("kafka-topic"),
				Roster:       c.StringSlice("roster"),
				AdminName:    c.String("admin-name"),
				RateLimit:    c.Float64("rate"),
				RateBurst:    c.Int("burst"),
			})
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.Fatal().Err(err).Msg("exit")
	}
}

type storage struct {
	products      repository.ProductRepository
	orders        repository.OrderRepository
	announcements repository.AnnouncementRepository
	tx            repository.TxManager
	feed          repository.OrderFeed
	close         func() error
}

func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	var st *storage
	switch cfg.Store {
	case config.StoreMemory:
		store := repository.NewMemoryStore()
		orders := repository.NewMemoryOrders(store)
		st = &storage{products: store, orders: orders, announcements: store, tx: repository.NewMemoryTx(store),
			feed: orders, close: func() error { return nil }}
	case config.StoreRedis:
		rdb := config.NewRedisClient(cfg.RedisAddr)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		store := repository.NewRedisStore(rdb)
		orders := repository.NewRedisOrders(store)
		st = &storage{products: store, orders: orders, announcements: store, tx: store, feed: orders, close: rdb.Close}
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
	if cfg.Feed == config.FeedPoll {
		st.feed = repository.PollFeed{Repo: st.orders, Interval: cfg.PollInterval}
	}
	return st, nil
}

func run(cfg config.Config) error {
	ctx := context.Background()
	st, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	var publisher events.Publisher = events.Noop{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		w := config.NewKafkaWriter(brokers, cfg.KafkaTopic)
		defer w.Close()
		publisher = events.NewKafkaPublisher(w)
		logger.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaTopic).Msg("order events enabled")
	}

	if err := service.Seed(ctx, st.products, st.announcements); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	productsSvc := service.NewProductService(st.products)
	ordersSvc := service.NewOrderService(st.products, st.orders, st.tx, publisher)
	scheduler := service.NewAutoLockScheduler(ordersSvc)
	defer scheduler.Cancel()

	srv := httpapi.NewServer(httpapi.Services{
		Products:      productsSvc,
		Orders:        ordersSvc,
		Carts:         service.NewCartService(st.products, ordersSvc),
		Auth:          service.NewAuthService(cfg.Roster, cfg.AdminName, st.announcements),
		Announcements: service.NewAnnouncementService(st.announcements),
		AutoLock:      scheduler,
		Feed:          st.feed,
	}, httpapi.Options{RateLimit: cfg.RateLimit, RateBurst: cfg.RateBurst})

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Str("store", cfg.Store).Str("feed", cfg.Feed).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	return nil
}
