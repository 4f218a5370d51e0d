package handler

import (
	"context"

	"github.com/Astemirdum/library-borrowing/library/internal/model"
	"github.com/Astemirdum/library-borrowing/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	AuthService
	BookService
	BorrowingService
}

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.Session, error)
	Login(ctx context.Context, req model.LoginRequest) (model.Session, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, id string) (model.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
	TotalUsers(ctx context.Context) (int, error)
	ListUsers(ctx context.Context, p model.PageRequest) (model.ListUsers, error)
}

type BookService interface {
	ListBooks(ctx context.Context, p model.PageRequest) (model.ListBooks, error)
	AddBook(ctx context.Context, req model.AddBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id string) error
	TotalBooks(ctx context.Context) (int, error)
}

type BorrowingService interface {
	CreateBorrowing(ctx context.Context, userID string, req model.CreateBorrowingRequest) (model.CreatedBorrowing, error)
	ReturnBorrowing(ctx context.Context, userID string, req model.ReturnBorrowingRequest) (model.Borrowing, error)
	ListBorrowings(ctx context.Context, userID string) ([]model.BorrowedBook, error)
	TotalBorrowings(ctx context.Context) (int, error)
}

var _ LibraryService = (*service.Service)(nil)
