package repository

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-borrowing/library/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	UserRepository
	BookRepository
	BorrowingRepository
}

type UserRepository interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUserByID(ctx context.Context, id string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
	ListUsers(ctx context.Context, p model.PageRequest) ([]model.UserWithBorrowings, error)
	CountUsers(ctx context.Context, search string) (int, error)
}

type BookRepository interface {
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, p model.PageRequest) ([]model.Book, error)
	CountBooks(ctx context.Context, search string) (int, error)
	TotalBooks(ctx context.Context) (int, error)
}

type BorrowingRepository interface {
	CreateBorrowing(ctx context.Context, b model.Borrowing) (model.CreatedBorrowing, error)
	ReturnBorrowing(ctx context.Context, userID, bookID string, returnedAt time.Time, status model.ReturnStatus) (model.Borrowing, error)
	ListBorrowings(ctx context.Context, userID string) ([]model.BorrowedBook, error)
	CountBorrowings(ctx context.Context) (int, error)
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	if db == nil {
		return nil, errors.New("nil pool")
	}
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName      = `users`
	booksTableName      = `books`
	borrowingsTableName = `borrowings`

	openLoanIndex = `borrowings_open_loan_uidx`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func uniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr, true
	}
	return nil, false
}

func likePattern(search string) string {
	return "%" + search + "%"
}

func (r *repository) count(ctx context.Context, q sq.SelectBuilder) (int, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return n, nil
}

func columnList(cols []string) string {
	return strings.Join(cols, ", ")
}
