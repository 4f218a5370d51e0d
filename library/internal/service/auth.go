package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-borrowing/library/internal/errs"
	"github.com/Astemirdum/library-borrowing/library/internal/model"
	"github.com/Astemirdum/library-borrowing/pkg/auth"
)

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.Session, error) {
	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return model.Session{}, errs.ErrUserExists
	} else if !errors.Is(err, errs.ErrUserNotFound) {
		return model.Session{}, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return model.Session{}, err
	}
	user := model.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  hash,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return model.Session{}, err
	}
	return s.newSession(user)
}

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return model.Session{}, errs.ErrInvalidCredentials
		}
		return model.Session{}, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return model.Session{}, errs.ErrWrongPassword
	}
	return s.newSession(user)
}

func (s *Service) newSession(user model.User) (model.Session, error) {
	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{User: user, Token: token}, nil
}

// Logout revokes the presented token until it would have expired anyway.
// Unparseable tokens are ignored so that logout always clears the cookie.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.log.Warn("revoke token", zap.String("jti", claims.ID), zap.Error(err))
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, id string) (model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) UserExists(ctx context.Context, id string) (bool, error) {
	return s.repo.UserExists(ctx, id)
}

func (s *Service) TotalUsers(ctx context.Context) (int, error) {
	return s.repo.CountUsers(ctx, "")
}

func (s *Service) ListUsers(ctx context.Context, p model.PageRequest) (model.ListUsers, error) {
	p = p.Normalize()
	var (
		users []model.UserWithBorrowings
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.repo.ListUsers(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.CountUsers(gctx, p.Search)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ListUsers{}, err
	}
	now := s.now()
	for i := range users {
		for j := range users[i].BorrowedBooks {
			bb := &users[i].BorrowedBooks[j]
			bb.Status = model.EffectiveStatus(bb.Status, bb.DueDate, bb.ReturnedAt, now)
		}
	}
	if users == nil {
		users = []model.UserWithBorrowings{}
	}
	return model.ListUsers{
		Users:      users,
		Pagination: model.NewPagination(p, total),
	}, nil
}
