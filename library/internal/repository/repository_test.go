package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-borrowing/library/internal/errs"
	"github.com/Astemirdum/library-borrowing/library/internal/model"
	"github.com/Astemirdum/library-borrowing/library/migrations"
	"github.com/Astemirdum/library-borrowing/pkg/postgres"
)

// newTestRepository connects to TEST_DATABASE_URL and starts from empty tables.
func newTestRepository(t *testing.T) (*repository, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, 20, 0)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.MigrateUp(pool, migrations.MigrationFiles))

	_, err = pool.Exec(ctx, `truncate borrowings, books, users cascade`)
	require.NoError(t, err)

	repo, err := NewRepository(pool, zap.NewNop())
	require.NoError(t, err)
	return repo, pool
}

func seedUser(t *testing.T, repo *repository, name string) model.User {
	t.Helper()
	u := model.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    name + "@example.com",
		Password: "hash",
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func seedBook(t *testing.T, repo *repository, title string, quantity int) model.Book {
	t.Helper()
	b, err := repo.CreateBook(context.Background(), model.Book{
		ID:       uuid.NewString(),
		Title:    title,
		Author:   "Author",
		ISBN:     uuid.NewString()[:13],
		Quantity: quantity,
	})
	require.NoError(t, err)
	return b
}

func newBorrowing(userID, bookID string, at time.Time) model.Borrowing {
	return model.Borrowing{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: at,
		DueDate:    model.DueDate(at),
	}
}

func quantity(t *testing.T, pool *pgxpool.Pool, bookID string) int {
	t.Helper()
	var q int
	require.NoError(t, pool.QueryRow(context.Background(), `select quantity from books where id = $1`, bookID).Scan(&q))
	return q
}

func TestRepository_BorrowingLifecycle(t *testing.T) {
	repo, pool := newTestRepository(t)
	ctx := context.Background()

	u := seedUser(t, repo, "alice")
	b := seedBook(t, repo, "Dune", 2)
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	created, err := repo.CreateBorrowing(ctx, newBorrowing(u.ID, b.ID, at))
	require.NoError(t, err)
	require.Equal(t, "Dune", created.Book.Title)
	require.True(t, created.DueDate.Equal(at.AddDate(0, 0, 14)))
	require.Equal(t, 1, quantity(t, pool, b.ID))

	_, err = repo.CreateBorrowing(ctx, newBorrowing(u.ID, b.ID, at))
	require.ErrorIs(t, err, errs.ErrAlreadyBorrowed)
	require.Equal(t, 1, quantity(t, pool, b.ID))

	_, err = repo.ReturnBorrowing(ctx, u.ID, b.ID, at.Add(-time.Hour), model.ReturnReturned)
	require.ErrorIs(t, err, errs.ErrReturnBeforeBorrow)

	closed, err := repo.ReturnBorrowing(ctx, u.ID, b.ID, at.Add(24*time.Hour), model.ReturnReturned)
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, closed.Status)
	require.NotNil(t, closed.ReturnedAt)
	require.Equal(t, 2, quantity(t, pool, b.ID))

	_, err = repo.ReturnBorrowing(ctx, u.ID, b.ID, at.Add(48*time.Hour), model.ReturnReturned)
	require.ErrorIs(t, err, errs.ErrBorrowingNotFound)
	require.Equal(t, 2, quantity(t, pool, b.ID))

	// a closed loan does not block borrowing the same book again
	_, err = repo.CreateBorrowing(ctx, newBorrowing(u.ID, b.ID, at.Add(72*time.Hour)))
	require.NoError(t, err)

	list, err := repo.ListBorrowings(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, model.StatusBorrowed, list[0].Status)
	require.Equal(t, model.StatusReturned, list[1].Status)

	total, err := repo.CountBorrowings(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, total)
}

func TestRepository_TwoMembersShareLastCopy(t *testing.T) {
	repo, pool := newTestRepository(t)
	ctx := context.Background()

	u1 := seedUser(t, repo, "u1")
	u2 := seedUser(t, repo, "u2")
	b := seedBook(t, repo, "The Alchemist", 1)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	created, err := repo.CreateBorrowing(ctx, newBorrowing(u1.ID, b.ID, at))
	require.NoError(t, err)
	require.True(t, created.DueDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 0, quantity(t, pool, b.ID))

	_, err = repo.CreateBorrowing(ctx, newBorrowing(u2.ID, b.ID, at.Add(time.Hour)))
	require.ErrorIs(t, err, errs.ErrBookNotAvailable)

	returnedAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	closed, err := repo.ReturnBorrowing(ctx, u1.ID, b.ID, returnedAt, model.ReturnReturned)
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, closed.Status)
	require.Equal(t, 1, quantity(t, pool, b.ID))

	_, err = repo.CreateBorrowing(ctx, newBorrowing(u2.ID, b.ID, returnedAt.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, 0, quantity(t, pool, b.ID))
}

func TestRepository_ConcurrentReturn(t *testing.T) {
	repo, pool := newTestRepository(t)
	ctx := context.Background()

	u := seedUser(t, repo, "dave")
	b := seedBook(t, repo, "Single Copy", 1)
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.CreateBorrowing(ctx, newBorrowing(u.ID, b.ID, at))
	require.NoError(t, err)

	const returners = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		notFound int
	)
	start := make(chan struct{})
	for i := 0; i < returners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repo.ReturnBorrowing(ctx, u.ID, b.ID, at.Add(time.Hour), model.ReturnReturned)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, errs.ErrBorrowingNotFound):
				notFound++
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, 1, ok)
	require.Equal(t, returners-1, notFound)
	require.Equal(t, 1, quantity(t, pool, b.ID))
}

func TestRepository_ReturnLostKeepsInventory(t *testing.T) {
	repo, pool := newTestRepository(t)
	ctx := context.Background()

	u := seedUser(t, repo, "bob")
	b := seedBook(t, repo, "Solaris", 1)
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.CreateBorrowing(ctx, newBorrowing(u.ID, b.ID, at))
	require.NoError(t, err)
	require.Equal(t, 0, quantity(t, pool, b.ID))

	closed, err := repo.ReturnBorrowing(ctx, u.ID, b.ID, at.Add(time.Hour), model.ReturnLost)
	require.NoError(t, err)
	require.Equal(t, model.StatusLost, closed.Status)
	require.Equal(t, 0, quantity(t, pool, b.ID))

	_, err = repo.ReturnBorrowing(ctx, u.ID, b.ID, at.Add(2*time.Hour), model.ReturnReturned)
	require.ErrorIs(t, err, errs.ErrBorrowingNotFound)
	require.Equal(t, 0, quantity(t, pool, b.ID))
}

func TestRepository_CreateBorrowingUnavailable(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	u := seedUser(t, repo, "carol")
	empty := seedBook(t, repo, "Empty Shelf", 0)
	now := time.Now()

	_, err := repo.CreateBorrowing(ctx, newBorrowing(u.ID, empty.ID, now))
	require.ErrorIs(t, err, errs.ErrBookNotAvailable)

	_, err = repo.CreateBorrowing(ctx, newBorrowing(u.ID, uuid.NewString(), now))
	require.ErrorIs(t, err, errs.ErrBookNotFound)

	total, err := repo.CountBorrowings(ctx)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestRepository_ConcurrentBorrowLastCopy(t *testing.T) {
	repo, pool := newTestRepository(t)
	ctx := context.Background()

	const borrowers = 10
	b := seedBook(t, repo, "Last Copy", 1)
	users := make([]model.User, borrowers)
	for i := range users {
		users[i] = seedUser(t, repo, "user"+uuid.NewString()[:8])
	}

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		ok          int
		unavailable int
	)
	start := make(chan struct{})
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			<-start
			_, err := repo.CreateBorrowing(ctx, newBorrowing(userID, b.ID, time.Now()))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, errs.ErrBookNotAvailable):
				unavailable++
			}
		}(u.ID)
	}
	close(start)
	wg.Wait()

	require.Equal(t, 1, ok)
	require.Equal(t, borrowers-1, unavailable)
	require.Equal(t, 0, quantity(t, pool, b.ID))
}

func TestRepository_Users(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	alice := seedUser(t, repo, "alice")
	seedUser(t, repo, "bob")
	b := seedBook(t, repo, "Dune", 3)
	_, err := repo.CreateBorrowing(ctx, newBorrowing(alice.ID, b.ID, time.Now()))
	require.NoError(t, err)

	err = repo.CreateUser(ctx, model.User{ID: uuid.NewString(), Name: "dup", Email: alice.Email, Password: "x"})
	require.ErrorIs(t, err, errs.ErrUserExists)

	got, err := repo.GetUserByEmail(ctx, alice.Email)
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	_, err = repo.GetUserByID(ctx, uuid.NewString())
	require.ErrorIs(t, err, errs.ErrUserNotFound)

	exists, err := repo.UserExists(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, exists)

	users, err := repo.ListUsers(ctx, model.PageRequest{Search: "ALI", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Len(t, users[0].BorrowedBooks, 1)
	require.Equal(t, "Dune", users[0].BorrowedBooks[0].Title)
	require.Equal(t, model.StatusBorrowed, users[0].BorrowedBooks[0].Status)

	users, err = repo.ListUsers(ctx, model.PageRequest{Search: "bob", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Empty(t, users[0].BorrowedBooks)

	n, err := repo.CountUsers(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestRepository_Books(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	dune := seedBook(t, repo, "Dune", 1)
	seedBook(t, repo, "Solaris", 2)

	_, err := repo.CreateBook(ctx, model.Book{ID: uuid.NewString(), Title: "x", Author: "y", ISBN: dune.ISBN, Quantity: 1})
	require.ErrorIs(t, err, errs.ErrISBNExists)

	updated, err := repo.UpdateBook(ctx, dune.ID, model.UpdateBookRequest{
		Title: "Dune Messiah", Author: dune.Author, ISBN: dune.ISBN, AddCopies: 4,
	})
	require.NoError(t, err)
	require.Equal(t, 5, updated.Quantity)

	_, err = repo.UpdateBook(ctx, uuid.NewString(), model.UpdateBookRequest{Title: "a", Author: "b", ISBN: "c"})
	require.ErrorIs(t, err, errs.ErrBookNotFound)

	books, err := repo.ListBooks(ctx, model.PageRequest{Search: "messiah", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, books, 1)

	n, err := repo.CountBooks(ctx, "messiah")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	copies, err := repo.TotalBooks(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, copies)

	require.NoError(t, repo.DeleteBook(ctx, dune.ID))
	require.ErrorIs(t, repo.DeleteBook(ctx, dune.ID), errs.ErrBookNotFound)
}
