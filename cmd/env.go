package main

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/assessment-advisor/internal/config"
	"github.com/sells-group/assessment-advisor/internal/pipeline"
	"github.com/sells-group/assessment-advisor/internal/store"
	"github.com/sells-group/assessment-advisor/pkg/anthropic"
)

// advisorEnv holds the store, lookup chain and pipeline needed by the
// advise and serve commands.
type advisorEnv struct {
	Store    store.AdviceStore
	Lookup   store.AdviceLookup
	Pipeline *pipeline.Pipeline

	closers []func()
}

// Close releases resources held by the environment.
func (e *advisorEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv opens and migrates the store, attaches the optional redis cache
// and builds the pipeline. Callers should defer env.Close().
func initEnv(ctx context.Context, completer pipeline.Completer) (*advisorEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	env := &advisorEnv{Store: st, Lookup: st}

	if cfg.Cache.RedisURL != "" {
		rdb, err := initRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			zap.L().Warn("redis unavailable, continuing without lookup cache", zap.Error(err))
		} else {
			ttl := time.Duration(cfg.Cache.TTLSecs) * time.Second
			env.Lookup = store.NewCachedLookup(st, rdb, ttl)
			env.closers = append(env.closers, func() { _ = rdb.Close() })
		}
	}

	gen := &pipeline.Generator{Store: env.Lookup, Completer: completer}
	env.Pipeline = pipeline.New(gen, pipeline.Options{MaxConcurrency: cfg.Pipeline.MaxConcurrency})

	return env, nil
}

func initStore(ctx context.Context) (store.AdviceStore, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case config.DriverPostgres:
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case config.DriverMongo:
		return store.NewMongo(ctx, cfg.Store.DatabaseURL, cfg.Store.MongoDatabase, cfg.Store.MongoCollection)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "parse redis url")
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, eris.Wrap(err, "ping redis")
	}
	return rdb, nil
}

func initCompleter(offline bool) pipeline.Completer {
	if offline {
		return offlineCompleter{}
	}
	if cfg.Anthropic.Key == "" {
		zap.L().Warn("anthropic api key is not configured; every advice item will carry the failure text",
			zap.String("env", "ADVISOR_ANTHROPIC_KEY or ANTHROPIC_API_KEY"),
		)
	}
	return anthropic.NewCompleter(anthropic.CompleterConfig{
		APIKey:  cfg.Anthropic.Key,
		Model:   cfg.Anthropic.Model,
		BaseURL: cfg.Anthropic.BaseURL,
		Timeout: time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
	})
}

// offlineCompleter answers without a generation service by echoing the
// baseline line of the prompt.
type offlineCompleter struct{}

func (offlineCompleter) Complete(_ context.Context, _, user string, _ int64, _ float64) (string, error) {
	first, _, _ := strings.Cut(user, "\n")
	return "[offline] " + strings.TrimSpace(first), nil
}
