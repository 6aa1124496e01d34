package store

import (
	"context"
	"errors"

	"github.com/avvvet/hobheap-services/internal/notesvc/db"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// PostgresManager runs each unit of work in a pgx transaction.
type PostgresManager struct {
	pool db.TxBeginner
}

func NewPostgresManager(pool db.TxBeginner) *PostgresManager {
	return &PostgresManager{pool: pool}
}

func (m *PostgresManager) RunInTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return db.WithTx(ctx, m.pool, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, NewPostgresRepositories(tx))
	})
}

type pgRepositories struct {
	db db.DBTX
}

// NewPostgresRepositories binds every store to conn (a pool or a tx).
func NewPostgresRepositories(conn db.DBTX) Repositories {
	return &pgRepositories{db: conn}
}

func (r *pgRepositories) Users() UserRepository { return NewUserStore(r.db) }

func (r *pgRepositories) Cards() CardRepository { return NewCardStore(r.db) }

func (r *pgRepositories) Versions() CardVersionRepository { return NewCardVersionStore(r.db) }

func (r *pgRepositories) Documents() DocumentRepository { return NewDocumentStore(r.db) }

func (r *pgRepositories) DocumentCards() DocumentCardRepository { return NewDocumentCardStore(r.db) }

func (r *pgRepositories) Tags() TagRepository { return NewTagStore(r.db) }

func (r *pgRepositories) OTPs() OTPRepository { return NewOTPStore(r.db) }

// constraintViolation returns the violated constraint name when err is a
// Postgres error with the given SQLSTATE.
func constraintViolation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}
