// @title        Account API
// @version      1.0
// @description  User registration, login and password recovery.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	_ "github.com/useraccounts/account-api/docs"
	"github.com/useraccounts/account-api/internal/api"
	"github.com/useraccounts/account-api/internal/core/ports"
	"github.com/useraccounts/account-api/internal/core/security"
	"github.com/useraccounts/account-api/internal/core/service"
	"github.com/useraccounts/account-api/internal/infrastructure/config"
	mongostore "github.com/useraccounts/account-api/internal/infrastructure/db/mongo"
	pgstore "github.com/useraccounts/account-api/internal/infrastructure/db/postgres"
	redisstore "github.com/useraccounts/account-api/internal/infrastructure/db/redis"
	"github.com/useraccounts/account-api/internal/infrastructure/http/handlers"
	"github.com/useraccounts/account-api/internal/infrastructure/mail"
	"github.com/useraccounts/account-api/pkg/logger"
)

//go:generate swag init --dir ../.. --generalInfo cmd/server/main.go --output ../../docs

const shutdownTimeout = 15 * time.Second

func main() {
	loadLocalEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "account-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "account-api",
		Env:     cfg.Env,
	})

	repo, checks, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()
	checks = append(checks, handlers.Check{Name: "redis", Ping: redisstore.Ping(rdb)})

	mailer, err := newMailer(cfg.Mail)
	if err != nil {
		return err
	}

	hasher, err := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if err != nil {
		return err
	}

	accounts, err := service.NewAccountService(service.Dependencies{
		Repo:   repo,
		Hasher: hasher,
		Tokens: tokens,
		Codes:  security.NewCodeGenerator(),
		Mailer: mailer,
		Replay: redisstore.NewReplayGuard(rdb),
	}, service.Options{
		MailFrom:      cfg.Mail.Sender(),
		SessionTTL:    cfg.Auth.SessionTTL,
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
		CodeTTL:       cfg.Auth.CodeTTL,
	}, log)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.RouterConfig{
		Accounts:  accounts,
		Tokens:    tokens,
		Checks:    checks,
		StaticDir: cfg.StaticDir,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Str("mail", cfg.Mail.Driver).Msg("account api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// openStore connects the credential store selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.AccountRepository, []handlers.Check, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}
		repo := mongostore.NewAccountRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo credential store ready")
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return repo, []handlers.Check{{Name: "mongodb", Ping: mongostore.Ping(db)}}, closeFn, nil

	default:
		pool, err := pgstore.Connect(ctx, pgstore.Config{URL: cfg.Postgres.URL})
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pgstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		log.Info().Msg("postgres credential store ready")
		return pgstore.NewAccountRepository(pool), []handlers.Check{{Name: "postgres", Ping: pool.Ping}}, pool.Close, nil
	}
}

func newMailer(cfg config.MailConfig) (ports.Mailer, error) {
	if cfg.Driver == config.MailDriverLog {
		return mail.NewLogMailer(logger.Get()), nil
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
	})
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "account-api: reading .env: %v\n", err)
	}
}
