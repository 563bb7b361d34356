package resumekit

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Accounts() Accounts
	Orders() Orders
}

type mngr struct {
	db       *bun.DB
	accounts Accounts
	orders   Orders
}

// NewRepositoryManager wires the repositories against a connected handle.
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:       db,
		accounts: NewAccountsRepository(db),
		orders:   NewOrdersRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	if m.orders == nil {
		return errors.New("repository orders should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Accounts() Accounts {
	return m.accounts
}

func (m mngr) Orders() Orders {
	return m.orders
}
