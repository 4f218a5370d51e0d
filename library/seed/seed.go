// Package seed loads the demo catalog.
package seed

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-borrowing/library/internal/errs"
	"github.com/Astemirdum/library-borrowing/library/internal/model"
	"github.com/Astemirdum/library-borrowing/library/internal/repository"
	"github.com/Astemirdum/library-borrowing/pkg/auth"
)

type Book struct {
	Title    string
	Author   string
	ISBN     string
	Quantity int
}

// Catalog has a few titles with no copies on the shelf so that the
// unavailable path is visible in a fresh install.
var Catalog = []Book{
	{"The Great Gatsby", "F. Scott Fitzgerald", "9780-0-7432-7356-5", 10},
	{"To Kill a Mockingbird", "Harper Lee", "9780-0-06-112008-4", 10},
	{"1984", "George Orwell", "9780-0-452-28423-4", 10},
	{"Pride and Prejudice", "Jane Austen", "9780-0-14-143951-8", 10},
	{"The Catcher in the Rye", "J.D. Salinger", "9780-316-76948-0", 10},
	{"Harry Potter and the Sorcerer's Stone", "J.K. Rowling", "9780-590-35340-3", 10},
	{"The Lord of the Rings", "J.R.R. Tolkien", "9780-7432-7357-1", 0},
	{"The Hobbit", "J.R.R. Tolkien", "9780-7432-7357-2", 0},
	{"The Alchemist", "Paulo Coelho", "9780-7432-7357-3", 1},
	{"The Little Prince", "Antoine de Saint-Exupéry", "9780-7432-7357-4", 1},
}

// Run inserts the catalog, skipping books whose ISBN is already present.
func Run(ctx context.Context, db *pgxpool.Pool, books []Book, log *zap.Logger) (int, error) {
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, b := range books {
		_, err := repo.CreateBook(ctx, model.Book{
			ID:       uuid.NewString(),
			Title:    b.Title,
			Author:   b.Author,
			ISBN:     b.ISBN,
			Quantity: b.Quantity,
		})
		switch {
		case errors.Is(err, errs.ErrISBNExists):
			log.Info("book exists, skipped", zap.String("isbn", b.ISBN))
		case err != nil:
			return created, errors.Wrapf(err, "seed %q", b.Title)
		default:
			created++
			log.Info("book created", zap.String("title", b.Title))
		}
	}
	return created, nil
}

// Member creates a member account with a bcrypt hashed password.
func Member(ctx context.Context, db *pgxpool.Pool, name, email, password string, log *zap.Logger) (model.User, error) {
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return model.User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	user := model.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: hash,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}
