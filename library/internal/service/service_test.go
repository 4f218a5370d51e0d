package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-borrowing/library/internal/errs"
	"github.com/Astemirdum/library-borrowing/library/internal/model"
	repo_mocks "github.com/Astemirdum/library-borrowing/library/internal/repository/mocks"
	"github.com/Astemirdum/library-borrowing/library/internal/service"
	"github.com/Astemirdum/library-borrowing/pkg/auth"
	"github.com/Astemirdum/library-borrowing/pkg/kafka"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type eventRecorder struct {
	mu     sync.Mutex
	events []kafka.BorrowingEvent
	err    error
}

func (r *eventRecorder) Publish(_ context.Context, ev kafka.BorrowingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *eventRecorder) Close() error { return nil }

type revokeRecorder struct {
	jti   string
	until time.Time
}

func (r *revokeRecorder) Revoke(_ context.Context, jti string, until time.Time) error {
	r.jti, r.until = jti, until
	return nil
}

func (r *revokeRecorder) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func newService(t *testing.T, opts ...service.Option) (*service.Service, *repo_mocks.MockRepository, *eventRecorder) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := repo_mocks.NewMockRepository(ctrl)
	events := &eventRecorder{}
	opts = append([]service.Option{
		service.WithClock(func() time.Time { return testNow }),
		service.WithEventLog(events),
	}, opts...)
	svc := service.NewService(repo, auth.NewTokenManager("secret", time.Hour), zap.NewNop(), opts...)
	return svc, repo, events
}

func TestService_CreateBorrowing(t *testing.T) {
	t.Parallel()
	borrowedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		svc, repo, events := newService(t)
		repo.EXPECT().
			CreateBorrowing(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b model.Borrowing) (model.CreatedBorrowing, error) {
				require.Equal(t, "u1", b.UserID)
				require.Equal(t, "b1", b.BookID)
				require.Equal(t, model.StatusBorrowed, b.Status)
				require.Equal(t, borrowedAt, b.BorrowedAt)
				require.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), b.DueDate)
				require.NotEmpty(t, b.ID)
				return model.CreatedBorrowing{
					ID:         b.ID,
					BorrowedAt: b.BorrowedAt,
					DueDate:    b.DueDate,
					Book:       model.BookRef{Title: "The Hobbit", Author: "J.R.R. Tolkien", ISBN: "9780547928227"},
				}, nil
			})

		got, err := svc.CreateBorrowing(context.Background(), "u1", model.CreateBorrowingRequest{BookID: "b1", BorrowedAt: &borrowedAt})
		require.NoError(t, err)
		require.Equal(t, "The Hobbit", got.Book.Title)
		require.Len(t, events.events, 1)
		require.Equal(t, kafka.EventBorrowed, events.events[0].EventType)
		require.Equal(t, got.ID, events.events[0].BorrowingID)
	})

	t.Run("err. not available", func(t *testing.T) {
		t.Parallel()
		svc, repo, events := newService(t)
		repo.EXPECT().
			CreateBorrowing(gomock.Any(), gomock.Any()).
			Return(model.CreatedBorrowing{}, errs.ErrBookNotAvailable)

		_, err := svc.CreateBorrowing(context.Background(), "u1", model.CreateBorrowingRequest{BookID: "b1", BorrowedAt: &borrowedAt})
		require.ErrorIs(t, err, errs.ErrBookNotAvailable)
		require.ErrorIs(t, err, errs.ErrConflict)
		require.Empty(t, events.events)
	})

	t.Run("ok. event log failure is not surfaced", func(t *testing.T) {
		t.Parallel()
		svc, repo, events := newService(t)
		events.err = errors.New("broker down")
		repo.EXPECT().
			CreateBorrowing(gomock.Any(), gomock.Any()).
			Return(model.CreatedBorrowing{ID: "br1"}, nil)

		_, err := svc.CreateBorrowing(context.Background(), "u1", model.CreateBorrowingRequest{BookID: "b1", BorrowedAt: &borrowedAt})
		require.NoError(t, err)
		require.Len(t, events.events, 1)
	})
}

func TestService_ReturnBorrowing(t *testing.T) {
	t.Parallel()
	returnedAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		req        model.ReturnBorrowingRequest
		wantAt     time.Time
		repoErr    error
		wantErr    error
		wantEvent  kafka.EventType
		expectRepo bool
	}{
		{
			name:       "ok. returned",
			req:        model.ReturnBorrowingRequest{BookID: "b1", ReturnedAt: &returnedAt, Status: model.ReturnReturned},
			wantAt:     returnedAt,
			wantEvent:  kafka.EventReturned,
			expectRepo: true,
		},
		{
			name:       "ok. lost defaults to now",
			req:        model.ReturnBorrowingRequest{BookID: "b1", Status: model.ReturnLost},
			wantAt:     testNow,
			wantEvent:  kafka.EventLost,
			expectRepo: true,
		},
		{
			name:    "err. overdue is not a return status",
			req:     model.ReturnBorrowingRequest{BookID: "b1", Status: model.ReturnStatus(model.StatusOverdue)},
			wantErr: errs.ErrInvalidStatus,
		},
		{
			name:    "err. borrowed is not a return status",
			req:     model.ReturnBorrowingRequest{BookID: "b1", Status: model.ReturnStatus(model.StatusBorrowed)},
			wantErr: errs.ErrInvalidStatus,
		},
		{
			name:       "err. no open loan",
			req:        model.ReturnBorrowingRequest{BookID: "b1", Status: model.ReturnReturned},
			wantAt:     testNow,
			repoErr:    errs.ErrBorrowingNotFound,
			wantErr:    errs.ErrBorrowingNotFound,
			expectRepo: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo, events := newService(t)
			if tt.expectRepo {
				repo.EXPECT().
					ReturnBorrowing(gomock.Any(), "u1", "b1", tt.wantAt, tt.req.Status).
					Return(model.Borrowing{ID: "br1", Status: tt.req.Status.BorrowingStatus()}, tt.repoErr)
			}

			got, err := svc.ReturnBorrowing(context.Background(), "u1", tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, events.events)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "br1", got.ID)
			require.Len(t, events.events, 1)
			require.Equal(t, tt.wantEvent, events.events[0].EventType)
		})
	}
}

func TestService_ListBorrowings(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newService(t)
	returned := testNow.Add(-time.Hour)
	repo.EXPECT().ListBorrowings(gomock.Any(), "u1").Return([]model.BorrowedBook{
		{ID: "b1", DueDate: testNow.Add(time.Hour), Status: model.StatusBorrowed},
		{ID: "b2", DueDate: testNow.Add(-time.Hour), Status: model.StatusBorrowed},
		{ID: "b3", DueDate: testNow.Add(-48 * time.Hour), ReturnedAt: &returned, Status: model.StatusReturned},
	}, nil)

	got, err := svc.ListBorrowings(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, model.StatusBorrowed, got[0].Status)
	require.Equal(t, model.StatusOverdue, got[1].Status)
	require.Equal(t, model.StatusReturned, got[2].Status)

	svc, repo, _ = newService(t)
	repo.EXPECT().ListBorrowings(gomock.Any(), "u2").Return(nil, nil)
	got, err = svc.ListBorrowings(context.Background(), "u2")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestService_ListBooks(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newService(t)
	want := model.PageRequest{Search: "tolk", Page: 1, Limit: 100}
	repo.EXPECT().ListBooks(gomock.Any(), want).Return([]model.Book{{ID: "b1", Title: "The Hobbit"}}, nil)
	repo.EXPECT().CountBooks(gomock.Any(), "tolk").Return(101, nil)

	got, err := svc.ListBooks(context.Background(), model.PageRequest{Search: "tolk", Limit: 500})
	require.NoError(t, err)
	require.Len(t, got.Books, 1)
	require.Equal(t, model.Pagination{
		CurrentPage:  1,
		ItemsPerPage: 100,
		TotalItems:   101,
		TotalPages:   2,
		HasNextPage:  true,
	}, got.Pagination)

	svc, repo, _ = newService(t)
	repo.EXPECT().ListBooks(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
	repo.EXPECT().CountBooks(gomock.Any(), "").Return(0, nil).AnyTimes()
	_, err = svc.ListBooks(context.Background(), model.PageRequest{})
	require.EqualError(t, err, "db down")
}

func TestService_Books(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newService(t)

	_, err := svc.AddBook(context.Background(), model.AddBookRequest{Title: "t", Author: "a", ISBN: "i", Quantity: 0})
	require.ErrorIs(t, err, errs.ErrInvalidQuantity)

	_, err = svc.UpdateBook(context.Background(), "b1", model.UpdateBookRequest{AddCopies: -1})
	require.ErrorIs(t, err, errs.ErrNegativeCopies)

	repo.EXPECT().CreateBook(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b model.Book) (model.Book, error) {
			require.NotEmpty(t, b.ID)
			require.Equal(t, 3, b.Quantity)
			return b, nil
		})
	book, err := svc.AddBook(context.Background(), model.AddBookRequest{Title: "t", Author: "a", ISBN: "i", Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, "t", book.Title)

	repo.EXPECT().DeleteBook(gomock.Any(), "missing").Return(errs.ErrBookNotFound)
	require.ErrorIs(t, svc.DeleteBook(context.Background(), "missing"), errs.ErrNotFound)

	repo.EXPECT().TotalBooks(gomock.Any()).Return(42, nil)
	total, err := svc.TotalBooks(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, total)
}

func TestService_RegisterLogin(t *testing.T) {
	t.Parallel()

	t.Run("err. user exists", func(t *testing.T) {
		t.Parallel()
		svc, repo, _ := newService(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), "a@b.c").Return(model.User{ID: "u1"}, nil)
		_, err := svc.Register(context.Background(), model.RegisterRequest{Name: "Ann", Email: "a@b.c", Password: "pw"})
		require.ErrorIs(t, err, errs.ErrUserExists)
	})

	t.Run("ok. register then login", func(t *testing.T) {
		t.Parallel()
		svc, repo, _ := newService(t)
		var stored model.User
		repo.EXPECT().GetUserByEmail(gomock.Any(), "a@b.c").Return(model.User{}, errs.ErrUserNotFound)
		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u model.User) error {
				require.NotEqual(t, "pw", u.Password)
				stored = u
				return nil
			})
		sess, err := svc.Register(context.Background(), model.RegisterRequest{Name: "Ann", Email: "a@b.c", Password: "pw"})
		require.NoError(t, err)
		require.NotEmpty(t, sess.Token)
		require.Equal(t, stored.ID, sess.User.ID)

		claims, err := auth.NewTokenManager("secret", time.Hour).Parse(sess.Token)
		require.NoError(t, err)
		require.Equal(t, stored.ID, claims.UserID)

		repo.EXPECT().GetUserByEmail(gomock.Any(), "a@b.c").Return(stored, nil).Times(2)
		_, err = svc.Login(context.Background(), model.LoginRequest{Email: "a@b.c", Password: "nope"})
		require.ErrorIs(t, err, errs.ErrWrongPassword)

		sess, err = svc.Login(context.Background(), model.LoginRequest{Email: "a@b.c", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, "Ann", sess.User.Name)
	})

	t.Run("err. unknown email", func(t *testing.T) {
		t.Parallel()
		svc, repo, _ := newService(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), "x@b.c").Return(model.User{}, errs.ErrUserNotFound)
		_, err := svc.Login(context.Background(), model.LoginRequest{Email: "x@b.c", Password: "pw"})
		require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})
}

func TestService_Logout(t *testing.T) {
	t.Parallel()
	revoker := &revokeRecorder{}
	svc, _, _ := newService(t, service.WithRevoker(revoker))

	token, claims, err := auth.NewTokenManager("secret", time.Hour).Issue("u1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))
	require.Equal(t, claims.ID, revoker.jti)
	require.Equal(t, claims.ExpiresAt.Time, revoker.until)

	require.NoError(t, svc.Logout(context.Background(), "garbage"))
	require.NoError(t, svc.Logout(context.Background(), ""))
}

func TestService_ListUsers(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newService(t)
	repo.EXPECT().ListUsers(gomock.Any(), model.PageRequest{Page: 2, Limit: 10}).Return([]model.UserWithBorrowings{
		{ID: "u1", Name: "Ann", BorrowedBooks: []model.UserBorrowedBook{
			{BookID: "b1", DueDate: testNow.Add(-time.Minute), Status: model.StatusBorrowed},
		}},
	}, nil)
	repo.EXPECT().CountUsers(gomock.Any(), "").Return(11, nil)

	got, err := svc.ListUsers(context.Background(), model.PageRequest{Page: 2})
	require.NoError(t, err)
	require.Equal(t, model.StatusOverdue, got.Users[0].BorrowedBooks[0].Status)
	require.Equal(t, 2, got.Pagination.TotalPages)
	require.True(t, got.Pagination.HasPreviousPage)
	require.False(t, got.Pagination.HasNextPage)
}
