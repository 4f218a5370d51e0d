package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	libraryRepo "github.com/Astemirdum/library-borrowing/library/internal/repository"
	"github.com/Astemirdum/library-borrowing/pkg/auth"
	"github.com/Astemirdum/library-borrowing/pkg/kafka"
	"github.com/Astemirdum/library-borrowing/pkg/session"
)

type Service struct {
	log     *zap.Logger
	repo    libraryRepo.Repository
	tokens  *auth.TokenManager
	revoker session.Revoker
	events  kafka.EventLog
	now     func() time.Time
}

type Option func(s *Service)

func WithEventLog(events kafka.EventLog) Option {
	return func(s *Service) {
		s.events = events
	}
}

func WithRevoker(revoker session.Revoker) Option {
	return func(s *Service) {
		s.revoker = revoker
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo libraryRepo.Repository, tokens *auth.TokenManager, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:     log.Named("service"),
		repo:    repo,
		tokens:  tokens,
		revoker: session.Noop{},
		events:  kafka.NewNoopEventLog(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// publish runs after commit; a failure is logged and never reaches the caller.
func (s *Service) publish(ctx context.Context, ev kafka.BorrowingEvent) {
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("publish borrowing event",
			zap.String("type", string(ev.EventType)),
			zap.String("borrowingId", ev.BorrowingID),
			zap.Error(err))
	}
}
