// Package watchlist stores the symbols watched by each user in PostgreSQL.
//
// The store expects the following tables, managed outside of this module:
//
//	users(id text primary key, email text unique, name text, news_mail boolean default true)
//	watchlist(user_id text, symbol text, company text, added_at timestamptz, unique (user_id, symbol))
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/etnz/signalist"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate is returned when a user adds a symbol already in their watchlist.
var ErrDuplicate = errors.New("symbol already in watchlist")

// ErrUnknownUser is returned when no user matches an email.
var ErrUnknownUser = errors.New("unknown user")

// DB is the subset of *pgxpool.Pool used by the Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads and writes watchlists.
type Store struct {
	db     DB
	now    func() time.Time
	logger *slog.Logger
}

// New returns a Store on top of db.
func New(db DB) *Store {
	return &Store{db: db, now: time.Now, logger: slog.Default()}
}

// Open connects to the database at url and returns the Store and the pool to close.
func Open(ctx context.Context, url string) (*Store, *pgxpool.Pool, error) {
	if url == "" {
		return nil, nil, &signalist.ConfigurationError{Setting: "DATABASE_URL"}
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot connect to the database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("cannot reach the database: %w", err)
	}
	return New(pool), pool, nil
}

// WithLogger returns s logging to l.
func (s *Store) WithLogger(l *slog.Logger) *Store {
	s.logger = l
	return s
}

// normalize trims and uppercases a symbol.
func normalize(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

// Add saves symbol in the watchlist of userID.
func (s *Store) Add(ctx context.Context, userID, symbol, company string) (signalist.WatchlistItem, error) {
	item := signalist.WatchlistItem{
		UserID:  strings.TrimSpace(userID),
		Symbol:  normalize(symbol),
		Company: strings.TrimSpace(company),
		AddedAt: s.now().UTC(),
	}
	switch {
	case item.UserID == "":
		return item, &signalist.ValidationError{Field: "userId", Reason: "is required"}
	case item.Symbol == "":
		return item, &signalist.ValidationError{Field: "symbol", Reason: "is required"}
	case item.Company == "":
		item.Company = item.Symbol
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO watchlist (user_id, symbol, company, added_at) VALUES ($1, $2, $3, $4)`,
		item.UserID, item.Symbol, item.Company, item.AddedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return item, fmt.Errorf("%s: %w", item.Symbol, ErrDuplicate)
	}
	if err != nil {
		return item, fmt.Errorf("cannot add %s to the watchlist: %w", item.Symbol, err)
	}
	return item, nil
}

// Remove deletes symbol from the watchlist of userID. It reports whether the symbol was there.
func (s *Store) Remove(ctx context.Context, userID, symbol string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM watchlist WHERE user_id = $1 AND symbol = $2`, userID, normalize(symbol))
	if err != nil {
		return false, fmt.Errorf("cannot remove %s from the watchlist: %w", normalize(symbol), err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns the watchlist of userID, most recently added first.
func (s *Store) List(ctx context.Context, userID string) ([]signalist.WatchlistItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT user_id, symbol, company, added_at FROM watchlist WHERE user_id = $1 ORDER BY added_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("cannot list the watchlist: %w", err)
	}
	defer rows.Close()

	var items []signalist.WatchlistItem
	for rows.Next() {
		var item signalist.WatchlistItem
		if err := rows.Scan(&item.UserID, &item.Symbol, &item.Company, &item.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Has reports whether symbol is in the watchlist of userID.
func (s *Store) Has(ctx context.Context, userID, symbol string) (bool, error) {
	var found bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM watchlist WHERE user_id = $1 AND symbol = $2)`, userID, normalize(symbol)).Scan(&found)
	return found, err
}

// UserByEmail returns the user registered with email.
func (s *Store) UserByEmail(ctx context.Context, email string) (signalist.User, error) {
	var u signalist.User
	err := s.db.QueryRow(ctx, `SELECT id, email, name FROM users WHERE email = $1`, strings.TrimSpace(email)).
		Scan(&u.ID, &u.Email, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, fmt.Errorf("%q: %w", email, ErrUnknownUser)
	}
	return u, err
}

// SymbolsByEmail returns the symbols watched by the user registered with email.
//
// It never fails: an unknown user, or any database error, yields an empty list.
func (s *Store) SymbolsByEmail(ctx context.Context, email string) []string {
	if strings.TrimSpace(email) == "" {
		return []string{}
	}
	symbols, err := s.symbolsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("cannot fetch watchlist symbols", "email", email, "error", err)
		return []string{}
	}
	return symbols
}

func (s *Store) symbolsByEmail(ctx context.Context, email string) ([]string, error) {
	u, err := s.UserByEmail(ctx, email)
	if errors.Is(err, ErrUnknownUser) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT symbol FROM watchlist WHERE user_id = $1 ORDER BY added_at`, u.ID)
	if err != nil {
		return nil, err
	}
	symbols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	res := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if symbol != "" {
			res = append(res, symbol)
		}
	}
	return res, nil
}

// UsersForNewsMail returns the users subscribed to the daily news digest.
func (s *Store) UsersForNewsMail(ctx context.Context) ([]signalist.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, email, name FROM users WHERE email <> '' AND news_mail ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("cannot list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (signalist.User, error) {
		var u signalist.User
		err := row.Scan(&u.ID, &u.Email, &u.Name)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("cannot list users: %w", err)
	}
	return users, nil
}
