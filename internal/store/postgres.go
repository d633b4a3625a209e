package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/serroba/shortlink/internal/shortener"
)

const uniqueViolationCode = "23505"

// Querier is the subset of pgxpool.Pool used by PostgresStore.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
// Uniqueness of short_code and of the SHA-256 of original_url is enforced by the
// table's unique indexes. Indexing the digest keeps long URLs within btree limits.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Insert(ctx context.Context, link *shortener.Link) error {
	query := `
		INSERT INTO links (short_code, original_url, url_sha256, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := p.db.QueryRow(ctx, query,
		string(link.Code),
		link.OriginalURL,
		urlDigest(link.OriginalURL),
		link.CreatedAt,
	).Scan(&link.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return shortener.ErrConflict
		}

		return fmt.Errorf("insert link: %w", err)
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	query := `
		SELECT id, short_code, original_url, created_at
		FROM links
		WHERE short_code = $1
	`

	return p.getOne(ctx, query, string(code))
}

func (p *PostgresStore) GetByURL(ctx context.Context, originalURL string) (*shortener.Link, error) {
	query := `
		SELECT id, short_code, original_url, created_at
		FROM links
		WHERE url_sha256 = $1
	`

	return p.getOne(ctx, query, urlDigest(originalURL))
}

func (p *PostgresStore) getOne(ctx context.Context, query string, arg any) (*shortener.Link, error) {
	var link shortener.Link

	err := p.db.QueryRow(ctx, query, arg).Scan(
		&link.ID,
		&link.Code,
		&link.OriginalURL,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("get link: %w", err)
	}

	return &link, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
