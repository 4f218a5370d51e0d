package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Astemirdum/library-borrowing/library/internal/errs"
	"github.com/Astemirdum/library-borrowing/library/internal/model"
	"github.com/Astemirdum/library-borrowing/pkg/kafka"
)

// CreateBorrowing opens a loan for the session user. The user always comes from the session.
func (s *Service) CreateBorrowing(ctx context.Context, userID string, req model.CreateBorrowingRequest) (model.CreatedBorrowing, error) {
	borrowedAt := s.now()
	if req.BorrowedAt != nil {
		borrowedAt = *req.BorrowedAt
	}
	b := model.Borrowing{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     req.BookID,
		BorrowedAt: borrowedAt,
		DueDate:    model.DueDate(borrowedAt),
		Status:     model.StatusBorrowed,
	}
	created, err := s.repo.CreateBorrowing(ctx, b)
	if err != nil {
		return model.CreatedBorrowing{}, err
	}
	s.publish(ctx, kafka.BorrowingEvent{
		Timestamp:   s.now(),
		UserID:      userID,
		BookID:      req.BookID,
		BorrowingID: created.ID,
		EventType:   kafka.EventBorrowed,
	})
	return created, nil
}

func (s *Service) ReturnBorrowing(ctx context.Context, userID string, req model.ReturnBorrowingRequest) (model.Borrowing, error) {
	if !req.Status.Valid() {
		return model.Borrowing{}, errs.ErrInvalidStatus
	}
	returnedAt := s.now()
	if req.ReturnedAt != nil {
		returnedAt = *req.ReturnedAt
	}
	closed, err := s.repo.ReturnBorrowing(ctx, userID, req.BookID, returnedAt, req.Status)
	if err != nil {
		return model.Borrowing{}, err
	}
	evType := kafka.EventReturned
	if req.Status == model.ReturnLost {
		evType = kafka.EventLost
	}
	s.publish(ctx, kafka.BorrowingEvent{
		Timestamp:   s.now(),
		UserID:      userID,
		BookID:      req.BookID,
		BorrowingID: closed.ID,
		EventType:   evType,
	})
	return closed, nil
}

func (s *Service) ListBorrowings(ctx context.Context, userID string) ([]model.BorrowedBook, error) {
	books, err := s.repo.ListBorrowings(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range books {
		books[i].Status = model.EffectiveStatus(books[i].Status, books[i].DueDate, books[i].ReturnedAt, now)
	}
	if books == nil {
		books = []model.BorrowedBook{}
	}
	return books, nil
}

func (s *Service) TotalBorrowings(ctx context.Context) (int, error) {
	return s.repo.CountBorrowings(ctx)
}
