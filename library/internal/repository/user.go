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

var userColumns = []string{"id", "name", "email", "password", "created_at", "updated_at"}

func (r *repository) CreateUser(ctx context.Context, user model.User) error {
	query, args, err := qb.Insert(usersTableName).
		Columns("id", "name", "email", "password").
		Values(user.ID, user.Name, user.Email, user.Password).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return errs.ErrUserExists
		}
		return errors.Wrap(err, "create user")
	}
	return nil
}

func (r *repository) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return r.getUser(ctx, sq.Eq{"id": id})
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, sq.Eq{"email": email})
}

func (r *repository) getUser(ctx context.Context, where sq.Eq) (model.User, error) {
	query, args, err := qb.Select(userColumns...).
		From(usersTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.User{}, errors.Wrap(err, "get user")
	}
	defer rows.Close()

	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errs.ErrUserNotFound
		}
		return model.User{}, errors.Wrap(err, "get user")
	}
	return user, nil
}

func (r *repository) UserExists(ctx context.Context, id string) (bool, error) {
	var ok bool
	q := `select exists(select 1 from users where id = @id)`
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&ok); err != nil {
		return false, errors.Wrap(err, "user exists")
	}
	return ok, nil
}

func usersFilter(q sq.SelectBuilder, search string) sq.SelectBuilder {
	if search == "" {
		return q
	}
	p := likePattern(search)
	return q.Where(sq.Or{sq.ILike{"u.name": p}, sq.ILike{"u.email": p}})
}

// ListUsers aggregates every borrowing of each user on the page into borrowed_books.
func (r *repository) ListUsers(ctx context.Context, p model.PageRequest) ([]model.UserWithBorrowings, error) {
	q := qb.Select(
		"u.id", "u.name", "u.email", "u.created_at",
		`coalesce(json_agg(json_build_object(
			'bookId', bk.id,
			'title', bk.title,
			'author', bk.author,
			'borrowedAt', br.borrowed_at,
			'dueDate', br.due_date,
			'returnedAt', br.returned_at,
			'status', br.status
		) order by br.borrowed_at desc) filter (where br.id is not null), '[]') as borrowed_books`,
	).
		From(usersTableName + " u").
		LeftJoin(borrowingsTableName + " br on br.user_id = u.id").
		LeftJoin(booksTableName + " bk on bk.id = br.book_id").
		GroupBy("u.id").
		OrderBy("u.name", "u.id").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset()))
	q = usersFilter(q, p.Search)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListUsers", zap.String("q", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.UserWithBorrowings])
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

func (r *repository) CountUsers(ctx context.Context, search string) (int, error) {
	return r.count(ctx, usersFilter(qb.Select("count(*)").From(usersTableName+" u"), search))
}
