package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-borrowing/library/config"
	"github.com/Astemirdum/library-borrowing/library/internal/handler"
	"github.com/Astemirdum/library-borrowing/library/internal/repository"
	"github.com/Astemirdum/library-borrowing/library/internal/server"
	"github.com/Astemirdum/library-borrowing/library/internal/service"
	"github.com/Astemirdum/library-borrowing/library/migrations"
	"github.com/Astemirdum/library-borrowing/pkg/auth"
	"github.com/Astemirdum/library-borrowing/pkg/kafka"
	"github.com/Astemirdum/library-borrowing/pkg/logger"
	"github.com/Astemirdum/library-borrowing/pkg/postgres"
	"github.com/Astemirdum/library-borrowing/pkg/session"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "library")
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return errors.Wrap(err, "db init")
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return errors.Wrap(err, "repo")
	}

	revoker, closeRevoker, err := newRevoker(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeRevoker()

	events, err := newEventLog(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := events.Close(); err != nil {
			log.Warn("event log close", zap.Error(err))
		}
	}()

	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.ExpiresIn)
	svc := service.NewService(repo, tokens, log,
		service.WithEventLog(events),
		service.WithRevoker(revoker),
	)

	h := handler.New(svc, tokens, revoker, handler.Options{
		SecureCookie: cfg.Auth.SecureCookie(),
		CORSOrigins:  cfg.Server.CORSOrigins,
	}, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
	return nil
}

func newRevoker(ctx context.Context, cfg session.Config, log *zap.Logger) (session.Revoker, func(), error) {
	if cfg.Addr == "" {
		log.Info("token revocation disabled")
		return session.Noop{}, func() {}, nil
	}
	client, err := session.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "redis init")
	}
	return session.NewRedisRevoker(client), func() { _ = client.Close() }, nil
}

func newEventLog(cfg kafka.Config, log *zap.Logger) (kafka.EventLog, error) {
	if !cfg.Enable {
		log.Info("borrowing event log disabled")
		return kafka.NewNoopEventLog(), nil
	}
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "kafka.NewProducer")
	}
	return kafka.NewEventLog(producer, log), nil
}
