package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/example/game-platform/internal/platform/analytics"
	"github.com/example/game-platform/internal/platform/auth"
	"github.com/example/game-platform/internal/platform/config"
	"github.com/example/game-platform/internal/platform/db"
	"github.com/example/game-platform/internal/platform/httpserver"
	"github.com/example/game-platform/internal/platform/logging"
	"github.com/example/game-platform/internal/platform/natsconn"
	"github.com/example/game-platform/internal/platform/run"
	"github.com/example/game-platform/services/achievement/internal/catalog"
	svcconfig "github.com/example/game-platform/services/achievement/internal/config"
	"github.com/example/game-platform/services/achievement/internal/grpcapi"
	"github.com/example/game-platform/services/achievement/internal/handlers"
	"github.com/example/game-platform/services/achievement/internal/notifier"
	"github.com/example/game-platform/services/achievement/internal/session"
	"github.com/example/game-platform/services/achievement/internal/store"
	"github.com/example/game-platform/services/achievement/internal/watch"
	"github.com/example/game-platform/services/achievement/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	svc := svcconfig.Load()
	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	fatal := func(msg string, err error) {
		log.Error(msg, zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}

	ctx := context.Background()

	st, pool := initStore(ctx, cfg, log)

	cat, err := initCatalog(ctx, svc.CatalogPath, pool)
	if err != nil {
		fatal("load achievement catalog", err)
	}
	log.Info("achievement catalog loaded", zap.Int("definitions", cat.Len()))

	policy, err := watch.ByName(svc.WatchPolicy)
	if err != nil {
		fatal("watch policy", err)
	}

	nc, err := natsconn.Connect(natsconn.Options{Name: cfg.ServiceName, Logger: log})
	if err != nil {
		fatal("nats connect", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		fatal("jetstream", err)
	}
	if err := worker.EnsureStream(js); err != nil {
		fatal("achievement stream", err)
	}
	if err := natsconn.EnsureStream(js, "ANALYTICS", analytics.StreamSubjects); err != nil {
		log.Warn("analytics stream unavailable, events may be dropped", zap.Error(err))
	}
	events := analytics.New(js, log)

	n := notifier.New(st, cat, session.NewNATSDirectory(nc, svc.SessionSubjectPrefix),
		notifier.WithPolicy(policy),
		notifier.WithLogger(log),
		notifier.WithEvents(events),
	)

	verifier := auth.JWTVerifier{Secret: []byte(svc.JWTSecret), Issuer: svc.JWTIssuer}
	if svc.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, authenticated routes will reject every request")
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error {
			if !nc.IsConnected() {
				return errors.New("nats not connected")
			}
			if pool != nil {
				pctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := pool.Ping(pctx); err != nil {
					return fmt.Errorf("postgres: %w", err)
				}
			}
			return nil
		},
	})
	handlers.Mount(r, n, verifier, log)
	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, Router: r})

	lis, err := net.Listen("tcp", svc.GRPCAddr)
	if err != nil {
		fatal("grpc listen", err)
	}
	grpcSrv := grpc.NewServer()
	grpcapi.Register(grpcSrv, &grpcapi.AchievementService{Notifier: n, Log: log})
	reflection.Register(grpcSrv)
	go func() {
		log.Info("grpc server starting", zap.String("addr", svc.GRPCAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		wcfg := worker.Config{BatchSize: svc.Worker.BatchSize, BatchInterval: svc.Worker.BatchInterval}
		if err := worker.StartSyncConsumer(ctx, js, n, wcfg, log); err != nil {
			return fmt.Errorf("sync consumer: %w", err)
		}
		if err := worker.StartProgressConsumer(ctx, js, st, events, wcfg, log); err != nil {
			return fmt.Errorf("progress consumer: %w", err)
		}

		go func() {
			<-ctx.Done()
			run.StopGRPC(grpcSrv, 10*time.Second)
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
			events.Flush(sctx)
		}()
		return srv.Start(log)
	})

	_ = nc.Drain()
	if pool != nil {
		pool.Close()
	}
	log.Info("exit", zap.Int("code", code))
	_ = log.Sync()
	run.Exit(code)
}

// initStore selects the store backend. In production a working Postgres
// connection is required and the process terminates otherwise.
func initStore(ctx context.Context, cfg config.AppConfig, log *zap.Logger) (store.ReadWriter, *pgxpool.Pool) {
	pool, err := db.Open(ctx, db.Options{})
	if err != nil {
		if cfg.IsProduction() {
			log.Error("postgres is required in production", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		if errors.Is(err, db.ErrNoDSN) {
			log.Warn("DATABASE_URL not set, using in-memory achievement store (development only)")
		} else {
			log.Warn("postgres unavailable, falling back to in-memory store", zap.Error(err))
		}
		return store.NewMemoryStore(), nil
	}

	pg := store.NewPostgresStore(pool)
	if err := pg.Migrate(ctx); err != nil {
		log.Error("achievement schema migration failed", zap.Error(err))
		pool.Close()
		_ = log.Sync()
		run.Exit(1)
	}
	log.Info("using postgres achievement store")
	return pg, pool
}

// initCatalog reads definitions from a JSON file when configured, otherwise
// from Postgres.
func initCatalog(ctx context.Context, path string, pool *pgxpool.Pool) (*catalog.Catalog, error) {
	if path != "" {
		return catalog.LoadFile(path)
	}
	if pool == nil {
		return nil, errors.New("ACHIEVEMENT_CATALOG_PATH is required without DATABASE_URL")
	}
	return catalog.LoadPostgres(ctx, pool)
}
