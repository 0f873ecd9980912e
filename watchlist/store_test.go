package watchlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/signalist"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addedAt = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func newStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s := New(mock)
	s.now = func() time.Time { return addedAt }
	return s, mock
}

func TestAdd(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec("INSERT INTO watchlist").
		WithArgs("u1", "AAPL", "Apple Inc", addedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	item, err := s.Add(context.Background(), "u1", "  aapl ", " Apple Inc ")
	require.NoError(t, err)
	assert.Equal(t, signalist.WatchlistItem{UserID: "u1", Symbol: "AAPL", Company: "Apple Inc", AddedAt: addedAt}, item)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_Duplicate(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec("INSERT INTO watchlist").
		WithArgs("u1", "AAPL", "AAPL", addedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := s.Add(context.Background(), "u1", "AAPL", "")
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_Invalid(t *testing.T) {
	s, mock := newStore(t)

	_, err := s.Add(context.Background(), "u1", "   ", "Apple")
	var verr *signalist.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "symbol", verr.Field)

	_, err = s.Add(context.Background(), "", "AAPL", "Apple")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "userId", verr.Field)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemove(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec("DELETE FROM watchlist").
		WithArgs("u1", "MSFT").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM watchlist").
		WithArgs("u1", "MSFT").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	removed, err := s.Remove(context.Background(), "u1", "msft")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove(context.Background(), "u1", "msft")
	require.NoError(t, err)
	assert.False(t, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	s, mock := newStore(t)
	rows := pgxmock.NewRows([]string{"user_id", "symbol", "company", "added_at"}).
		AddRow("u1", "MSFT", "Microsoft", addedAt).
		AddRow("u1", "AAPL", "Apple", addedAt.Add(-time.Hour))
	mock.ExpectQuery("SELECT user_id, symbol, company, added_at FROM watchlist").
		WithArgs("u1").
		WillReturnRows(rows)

	items, err := s.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "MSFT", items[0].Symbol)
	assert.Equal(t, "Apple", items[1].Company)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHas(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u1", "AAPL").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := s.Has(context.Background(), "u1", "aapl")
	require.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSymbolsByEmail(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery("SELECT id, email, name FROM users WHERE email").
		WithArgs("ada@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name"}).AddRow("u1", "ada@example.com", "Ada"))
	mock.ExpectQuery("SELECT symbol FROM watchlist").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"symbol"}).AddRow("AAPL").AddRow("").AddRow("MSFT"))

	got := s.SymbolsByEmail(context.Background(), "ada@example.com")
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSymbolsByEmail_NeverFails(t *testing.T) {
	testCases := []struct {
		name   string
		email  string
		expect func(mock pgxmock.PgxPoolIface)
	}{
		{
			name:   "empty email",
			email:  " ",
			expect: func(pgxmock.PgxPoolIface) {},
		},
		{
			name:  "unknown user",
			email: "nobody@example.com",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("FROM users").WithArgs("nobody@example.com").WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name:  "database down",
			email: "ada@example.com",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("FROM users").WithArgs("ada@example.com").WillReturnError(errors.New("connection refused"))
			},
		},
		{
			name:  "watchlist query fails",
			email: "ada@example.com",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("FROM users").WithArgs("ada@example.com").
					WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name"}).AddRow("u1", "ada@example.com", "Ada"))
				mock.ExpectQuery("FROM watchlist").WithArgs("u1").WillReturnError(errors.New("timeout"))
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newStore(t)
			tc.expect(mock)

			got := s.SymbolsByEmail(context.Background(), tc.email)
			assert.NotNil(t, got)
			assert.Empty(t, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUsersForNewsMail(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery("SELECT id, email, name FROM users WHERE email <> ''").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name"}).
			AddRow("u1", "ada@example.com", "Ada").
			AddRow("u2", "bob@example.com", "Bob"))

	users, err := s.UsersForNewsMail(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []signalist.User{
		{ID: "u1", Email: "ada@example.com", Name: "Ada"},
		{ID: "u2", Email: "bob@example.com", Name: "Bob"},
	}, users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_MissingURL(t *testing.T) {
	_, _, err := Open(context.Background(), "")
	assert.True(t, signalist.IsConfigurationError(err))
}
