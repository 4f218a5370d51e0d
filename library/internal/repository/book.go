package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-borrowing/library/internal/errs"
	"github.com/Astemirdum/library-borrowing/library/internal/model"
)

var bookColumns = []string{"id", "title", "author", "isbn", "quantity", "created_at", "updated_at"}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("id", "title", "author", "isbn", "quantity").
		Values(book.ID, book.Title, book.Author, book.ISBN, book.Quantity).
		Suffix("returning " + columnList(bookColumns)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	created, err := r.collectBook(ctx, query, args...)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.Book{}, errs.ErrISBNExists
		}
		return model.Book{}, errors.Wrap(err, "create book")
	}
	return created, nil
}

// UpdateBook edits the catalog fields and can only add copies, never assign quantity.
func (r *repository) UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("title", req.Title).
		Set("author", req.Author).
		Set("isbn", req.ISBN).
		Set("quantity", sq.Expr("quantity + ?", req.AddCopies)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("returning " + columnList(bookColumns)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	updated, err := r.collectBook(ctx, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.ErrBookNotFound
		}
		if _, ok := uniqueViolation(err); ok {
			return model.Book{}, errs.ErrISBNExists
		}
		return model.Book{}, errors.Wrap(err, "update book")
	}
	return updated, nil
}

func (r *repository) DeleteBook(ctx context.Context, id string) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "delete book")
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrBookNotFound
	}
	return nil
}

func booksFilter(q sq.SelectBuilder, search string) sq.SelectBuilder {
	if search == "" {
		return q
	}
	p := likePattern(search)
	return q.Where(sq.Or{sq.ILike{"title": p}, sq.ILike{"author": p}, sq.ILike{"isbn": p}})
}

func (r *repository) ListBooks(ctx context.Context, p model.PageRequest) ([]model.Book, error) {
	q := qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("title", "id").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset()))
	q = booksFilter(q, p.Search)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBooks", zap.String("q", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}
	defer rows.Close()

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}
	return books, nil
}

func (r *repository) CountBooks(ctx context.Context, search string) (int, error) {
	return r.count(ctx, booksFilter(qb.Select("count(*)").From(booksTableName), search))
}

func (r *repository) TotalBooks(ctx context.Context) (int, error) {
	return r.count(ctx, qb.Select("coalesce(sum(quantity), 0)").From(booksTableName))
}

func (r *repository) collectBook(ctx context.Context, query string, args ...interface{}) (model.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, err
	}
	defer rows.Close()
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
}
