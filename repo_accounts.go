package resumekit

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var markAccountPaidSQL = `UPDATE "accounts" AS "acc"
SET
	"status" = ?,
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."id" = ?
RETURNING *;`

var setResetTokenSQL = `UPDATE "accounts" AS "acc"
SET
	"reset_token" = ?,
	"reset_token_expiry" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."id" = ?
RETURNING *;`

var resetAccountPasswordSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?,
	"reset_token" = NULL,
	"reset_token_expiry" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."id" = ?
RETURNING *;`

// Accounts is the account store surface the handlers depend on.
type Accounts interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	Create(ctx context.Context, record *Account) (*Account, error)
	GetOrCreate(ctx context.Context, record *Account) (*Account, error)
	MarkPaid(ctx context.Context, id uuid.UUID, passwordHash string) (*Account, error)
	MarkPaidTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) (*Account, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error
	GetByResetToken(ctx context.Context, token string, now time.Time) (*Account, error)
	GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string, now time.Time) (*Account, error)
	GetByEmailAndResetToken(ctx context.Context, email, token string, now time.Time) (*Account, error)
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
}

type accounts struct {
	repo repository.Repository[*Account]
	db   *bun.DB
}

var _ Accounts = (*accounts)(nil)

// NewAccountsRepository builds the bun-backed account store.
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		repo: repo,
		db:   db,
	}
}

func (a *accounts) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *accounts) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *accounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) Create(ctx context.Context, record *Account) (*Account, error) {
	prepareAccountDefaults(record)
	return a.repo.Create(ctx, record)
}

// GetOrCreate is the idempotency primitive behind checkout intents: the
// account id is derived deterministically from the email, and an existing
// account for the same email is returned untouched.
func (a *accounts) GetOrCreate(ctx context.Context, record *Account) (*Account, error) {
	existing, err := a.GetByEmail(ctx, record.Email)
	if err == nil {
		return existing, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return a.Create(ctx, record)
}

func (a *accounts) MarkPaid(ctx context.Context, id uuid.UUID, passwordHash string) (*Account, error) {
	return a.MarkPaidTx(ctx, a.db, id, passwordHash)
}

func (a *accounts) MarkPaidTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) (*Account, error) {
	res, err := a.repo.RawTx(ctx, tx, markAccountPaidSQL, AccountPaid, passwordHash, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return res[0], nil
}

func (a *accounts) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	res, err := a.repo.RawTx(ctx, a.db, setResetTokenSQL, token, expiry, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *accounts) GetByResetToken(ctx context.Context, token string, now time.Time) (*Account, error) {
	return a.getByToken(ctx, a.db, "", token, now)
}

func (a *accounts) GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string, now time.Time) (*Account, error) {
	return a.getByToken(ctx, tx, "", token, now)
}

func (a *accounts) GetByEmailAndResetToken(ctx context.Context, email, token string, now time.Time) (*Account, error) {
	return a.getByToken(ctx, a.db, email, token, now)
}

// getByToken matches the stored token AND an unexpired expiry in a single
// query, so an expired code never matches even when the digits are right.
func (a *accounts) getByToken(ctx context.Context, tx bun.IDB, email, token string, now time.Time) (*Account, error) {
	if token == "" {
		return nil, repository.NewRecordNotFound()
	}

	record := &Account{}
	q := tx.NewSelect().
		Model(record).
		Where("?TableAlias.reset_token = ?", token).
		Where("?TableAlias.reset_token_expiry > ?", now)

	if email != "" {
		q = q.Where("?TableAlias.email = ?", email)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.ResetPasswordTx(ctx, a.db, id, passwordHash)
}

// ResetPasswordTx sets the new hash and clears the reset token in one
// statement; the token is consumed the instant it authorizes a change.
func (a *accounts) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.repo.RawTx(ctx, tx, resetAccountPasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.Status == "" {
		record.Status = AccountPending
	}

	if record.ID == uuid.Nil {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}
}
