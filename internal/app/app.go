package app

import (
	"context"
	"fmt"
	"time"

	"taskflow/internal/cache"
	"taskflow/internal/config"
	dom "taskflow/internal/domain"
	"taskflow/internal/home"
	"taskflow/internal/kv"
	"taskflow/internal/metrics"
	"taskflow/internal/record"
	"taskflow/internal/repo"
	"taskflow/internal/service"
	"taskflow/migrations"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	db      *pgxpool.Pool
	redis   *redis.Client
	metrics *metrics.Metrics

	records   *record.PGStore
	local     kv.Store
	taskCache *cache.TaskCache
	homes     *home.Registry
	router    *gin.Engine

	stopSweep context.CancelFunc
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log, metrics: metrics.New()}

	db, err := newPostgres(cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.redis = rdb

	if cfg.PG.AutoMigrate {
		if err := runMigrations(cfg.PG.DSN, log); err != nil {
			a.redis.Close()
			a.db.Close()
			return nil, err
		}
	}

	a.records = record.NewPGStore(db)
	a.taskCache = cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
	switch cfg.Store.Local {
	case "memory":
		a.local = kv.NewMemoryStore()
	default:
		a.local = kv.NewRedisStore(rdb, "local:", cfg.Store.LocalTTL.Duration())
	}
	sessionTTL := cfg.Session.TTL.Duration()
	a.homes = home.NewRegistry(a.newController,
		home.WithIdleTimeout(sessionTTL),
		home.WithMaxSessions(cfg.Session.MaxControllers),
	)
	a.startSweep(sweepInterval(sessionTTL))
	a.router = newRouter(a)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(_ context.Context) error {
	if a.stopSweep != nil {
		a.stopSweep()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

// newController picks the backing stores of a session: the owner's remote
// records when logged in, the local key-value store otherwise.
func (a *App) newController(id home.Identity) *home.Controller {
	if id.UserID != dom.AnonymousUserID {
		log := a.log.With(zap.String("mode", "remote"), zap.Int64("user_id", id.UserID))
		owner := a.records.Owner(id.UserID)
		tasks := service.NewTaskService(
			repo.NewRemoteTaskRepo(owner, a.cfg.Store.FetchLimit),
			a.taskCache,
			fmt.Sprintf("user:%d", id.UserID),
			log,
		)
		return home.New(tasks, repo.NewRemoteStatsRepo(owner), log, a.metrics)
	}

	log := a.log.With(zap.String("mode", "local"))
	tasks := service.NewTaskService(repo.NewLocalTaskRepo(a.local, localTasksKey(id.SessionID)), nil, "", log)
	return home.New(tasks, repo.NewLocalStatsRepo(a.local, localStatsKey(id.SessionID)), log, a.metrics)
}

// EndSession forgets a finished session. Anonymous sessions also lose their
// local task data, which nothing can reach once the session id is gone.
func (a *App) EndSession(ctx context.Context, id home.Identity) {
	a.homes.Drop(id.SessionID)
	if id.UserID != dom.AnonymousUserID {
		return
	}
	for _, key := range []string{localTasksKey(id.SessionID), localStatsKey(id.SessionID)} {
		if err := a.local.Delete(ctx, key); err != nil {
			a.log.Warn("clear local session data failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func localTasksKey(sessionID string) string { return "tasks:" + sessionID }
func localStatsKey(sessionID string) string { return "task_stats:" + sessionID }

func (a *App) startSweep(every time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopSweep = cancel
	go a.homes.Run(ctx, every, func(dropped int) {
		if dropped > 0 {
			a.log.Debug("idle task lists dropped", zap.Int("count", dropped), zap.Int("remaining", a.homes.Len()))
		}
	})
}

func sweepInterval(idle time.Duration) time.Duration {
	every := idle / 4
	if every <= 0 || every > 10*time.Minute {
		every = 10 * time.Minute
	}
	if every < time.Second {
		every = time.Second
	}
	return every
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// gooseLogger routes goose output through zap.
type gooseLogger struct{ s *zap.SugaredLogger }

func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.s.Fatalf(format, v...) }
func (l gooseLogger) Printf(format string, v ...interface{}) { l.s.Infof(format, v...) }

func runMigrations(dsn string, log *zap.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{s: log.Sugar().Named("goose")})

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(a *App) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(a.log), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cookie"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	Setup(r, a)
	return r
}
