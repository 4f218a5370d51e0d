package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-borrowing/library/internal/errs"
	"github.com/Astemirdum/library-borrowing/library/internal/model"
)

// ListBooks runs the page query and the total count concurrently.
func (s *Service) ListBooks(ctx context.Context, p model.PageRequest) (model.ListBooks, error) {
	p = p.Normalize()
	var (
		books []model.Book
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		books, err = s.repo.ListBooks(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.CountBooks(gctx, p.Search)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ListBooks{}, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return model.ListBooks{
		Books:      books,
		Pagination: model.NewPagination(p, total),
	}, nil
}

func (s *Service) AddBook(ctx context.Context, req model.AddBookRequest) (model.Book, error) {
	if req.Quantity < 1 {
		return model.Book{}, errs.ErrInvalidQuantity
	}
	return s.repo.CreateBook(ctx, model.Book{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Author:   req.Author,
		ISBN:     req.ISBN,
		Quantity: req.Quantity,
	})
}

func (s *Service) UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error) {
	if req.AddCopies < 0 {
		return model.Book{}, errs.ErrNegativeCopies
	}
	return s.repo.UpdateBook(ctx, id, req)
}

func (s *Service) DeleteBook(ctx context.Context, id string) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *Service) TotalBooks(ctx context.Context) (int, error) {
	return s.repo.TotalBooks(ctx)
}
