package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"quiz-intake-service/internal/app"
	"quiz-intake-service/internal/config"
	"quiz-intake-service/internal/domain"
	"quiz-intake-service/internal/infra/memory"
	"quiz-intake-service/internal/infra/notify"
	"quiz-intake-service/internal/infra/postgres"
	redisstore "quiz-intake-service/internal/infra/redis"
	"quiz-intake-service/internal/infra/sqlite"
)

// buildServices wires the configured infrastructure into the application
// context. probe is nil when there is no remote database to watch.
func buildServices(ctx context.Context, cfg config.Config) (services *app.Services, probe app.Probe, err error) {
	var closers []func() error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, redisClient.Close)
	}

	deps := app.Dependencies{
		SubmissionBucket: cfg.Local.SubmissionBucket,
		SnapshotBucket:   cfg.Local.SnapshotBucket,
		StartOnline:      !cfg.Connectivity.StartOffline,
		Flow:             app.FlowOptions{QueueOnRemoteFailure: cfg.QueueOnRemoteFailure()},
		AdminUsername:    cfg.Admin.Username,
		AdminSessionTTL:  config.TTLDuration(cfg.Admin.SessionTTL, 12*time.Hour),
	}

	switch cfg.Local.Driver {
	case "sqlite":
		kv, err := sqlite.Open(ctx, cfg.Local.Path)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, kv.Close)
		deps.Local = kv
	case "redis":
		deps.Local = redisstore.NewKVStore(redisClient)
	default:
		log.Printf("local driver memory: offline submissions are lost on restart")
		deps.Local = memory.NewKVStore()
	}

	if redisClient != nil {
		deps.AdminSessions = redisstore.NewAdminSessionStore(redisClient)
	} else {
		deps.AdminSessions = memory.NewAdminSessionStore()
	}

	if cfg.Postgres.URL != "" {
		pgcfg, err := pgxpool.ParseConfig(cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse postgres url: %w", err)
		}
		// The service must start while the database is unreachable.
		pgcfg.LazyConnect = true
		pool, err := pgxpool.ConnectConfig(ctx, pgcfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() error { pool.Close(); return nil })
		db := postgres.NewBunDB(cfg.Postgres.URL)
		closers = append(closers, db.Close)

		deps.Recorder = postgres.NewSubmissionRecorder(pool)
		deps.Loader = postgres.NewQuizLoader(pool)
		deps.Catalog = postgres.NewQuizCatalog(db)
		probe = func(ctx context.Context) error { return pool.Ping(ctx) }
	} else {
		log.Printf("postgres url not configured: using in-memory quiz catalog and submission log")
		catalog := memory.NewQuizCatalog(sampleQuizzes())
		deps.Recorder = memory.NewSubmissionLog()
		deps.Loader = catalog
		deps.Catalog = catalog
	}

	switch cfg.Notify.Driver {
	case "smtp":
		deps.Notifier = notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.Notify.SMTP.Host,
			Port:     cfg.Notify.SMTP.Port,
			Username: cfg.Notify.SMTP.Username,
			Password: cfg.Notify.SMTP.Password,
			From:     cfg.Notify.SMTP.From,
			ReplyTo:  cfg.Notify.SMTP.ReplyTo,
			To:       cfg.Notify.OperatorEmail,
		})
	case "amqp":
		publisher, err := notify.NewAMQPPublisher(notify.AMQPConfig{
			URL:   cfg.Notify.AMQP.URL,
			Queue: cfg.Notify.AMQP.Queue,
		}, cfg.Notify.OperatorEmail)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, publisher.Close)
		deps.Notifier = publisher
	default:
		deps.Notifier = notify.LogNotifier{}
	}

	hash, err := adminPasswordHash(cfg)
	if err != nil {
		return nil, nil, err
	}
	deps.AdminPasswordHash = hash

	services = app.NewServices(deps)
	for _, c := range closers {
		services.OnClose(c)
	}
	return services, probe, nil
}

func adminPasswordHash(cfg config.Config) ([]byte, error) {
	switch {
	case cfg.Admin.PasswordHash != "":
		return []byte(cfg.Admin.PasswordHash), nil
	case cfg.Admin.Password != "":
		return app.HashPassword(cfg.Admin.Password)
	default:
		log.Printf("admin password not configured: operator login is disabled")
		return app.HashPassword(uuid.NewString())
	}
}

// sampleQuizzes seeds the in-memory catalog used when no database is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"sample": {
			ID:          "sample",
			Title:       "Sample quiz",
			Description: "A short quiz to try the service without a database.",
			Questions: []domain.Question{
				{ID: "1", Question: "How did you hear about us?", Options: []string{"Friends", "Search", "Social media"}, Type: domain.QuestionSingle},
				{ID: "2", Question: "What would you like to learn?", Type: domain.QuestionText},
			},
		},
	}
}
