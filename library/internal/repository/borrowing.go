package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-borrowing/library/internal/errs"
	"github.com/Astemirdum/library-borrowing/library/internal/model"
)

var borrowingColumns = []string{
	"id", "user_id", "book_id", "borrowed_at", "due_date", "returned_at", "status", "created_at", "updated_at",
}

// CreateBorrowing takes a copy off the shelf and opens the loan in one transaction.
// The conditional decrement row-locks the book, so concurrent borrowers of the last
// copy are serialized and all but one see zero rows.
func (r *repository) CreateBorrowing(ctx context.Context, b model.Borrowing) (model.CreatedBorrowing, error) {
	var created model.CreatedBorrowing
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		q := `
update books
    set quantity = quantity - 1, updated_at = now()
where id = @book_id and quantity > 0
returning title, author, isbn`
		rows, err := tx.Query(ctx, q, pgx.NamedArgs{"book_id": b.BookID})
		if err != nil {
			return errors.Wrap(err, "take copy")
		}
		book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BookRef])
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return errors.Wrap(err, "take copy")
			}
			return r.unavailableReason(ctx, tx, b.BookID)
		}

		q = `
insert into borrowings (id, user_id, book_id, borrowed_at, due_date, status)
values (@id, @user_id, @book_id, @borrowed_at, @due_date, @status)
returning borrowed_at, due_date`
		args := pgx.NamedArgs{
			"id":          b.ID,
			"user_id":     b.UserID,
			"book_id":     b.BookID,
			"borrowed_at": b.BorrowedAt,
			"due_date":    b.DueDate,
			"status":      string(model.StatusBorrowed),
		}
		if err := tx.QueryRow(ctx, q, args).Scan(&created.BorrowedAt, &created.DueDate); err != nil {
			if pgErr, ok := uniqueViolation(err); ok && pgErr.ConstraintName == openLoanIndex {
				return errs.ErrAlreadyBorrowed
			}
			return errors.Wrap(err, "insert borrowing")
		}
		created.ID = b.ID
		created.Book = book
		return nil
	})
	if err != nil {
		return model.CreatedBorrowing{}, err
	}
	return created, nil
}

func (r *repository) unavailableReason(ctx context.Context, tx pgx.Tx, bookID string) error {
	var exists bool
	q := `select exists(select 1 from books where id = @book_id)`
	if err := tx.QueryRow(ctx, q, pgx.NamedArgs{"book_id": bookID}).Scan(&exists); err != nil {
		return errors.Wrap(err, "book exists")
	}
	if !exists {
		return errs.ErrBookNotFound
	}
	return errs.ErrBookNotAvailable
}

// ReturnBorrowing closes the caller's open loan of the book. Only RETURNED puts the copy back.
func (r *repository) ReturnBorrowing(
	ctx context.Context, userID, bookID string, returnedAt time.Time, status model.ReturnStatus,
) (model.Borrowing, error) {
	var closed model.Borrowing
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := qb.Select("id", "borrowed_at").
			From(borrowingsTableName).
			Where(sq.Eq{"user_id": userID, "book_id": bookID, "returned_at": nil}).
			Suffix("for update").
			ToSql()
		if err != nil {
			return err
		}
		var (
			id         string
			borrowedAt time.Time
		)
		if err := tx.QueryRow(ctx, query, args...).Scan(&id, &borrowedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrBorrowingNotFound
			}
			return errors.Wrap(err, "lock borrowing")
		}
		if returnedAt.Before(borrowedAt) {
			return errs.ErrReturnBeforeBorrow
		}

		query, args, err = qb.Update(borrowingsTableName).
			Set("returned_at", returnedAt).
			Set("status", string(status.BorrowingStatus())).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"id": id, "returned_at": nil}).
			Suffix("returning " + columnList(borrowingColumns)).
			ToSql()
		if err != nil {
			return err
		}
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return errors.Wrap(err, "close borrowing")
		}
		closed, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Borrowing])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrBorrowingNotFound
			}
			return errors.Wrap(err, "close borrowing")
		}

		if !status.Restocks() {
			return nil
		}
		q := `update books set quantity = quantity + 1, updated_at = now() where id = @book_id`
		if _, err := tx.Exec(ctx, q, pgx.NamedArgs{"book_id": bookID}); err != nil {
			return errors.Wrap(err, "restock")
		}
		return nil
	})
	if err != nil {
		return model.Borrowing{}, err
	}
	return closed, nil
}

func (r *repository) ListBorrowings(ctx context.Context, userID string) ([]model.BorrowedBook, error) {
	query, args, err := qb.Select(
		"b.id", "b.title", "b.author", "b.isbn", "b.quantity",
		"br.borrowed_at", "br.due_date", "br.returned_at", "br.status",
	).
		From(booksTableName + " b").
		Join(borrowingsTableName + " br on b.id = br.book_id").
		Where(sq.Eq{"br.user_id": userID}).
		OrderBy("br.borrowed_at desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBorrowings", zap.String("q", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list borrowings")
	}
	defer rows.Close()

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.BorrowedBook])
	if err != nil {
		return nil, errors.Wrap(err, "list borrowings")
	}
	return books, nil
}

func (r *repository) CountBorrowings(ctx context.Context) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(borrowingsTableName))
}
