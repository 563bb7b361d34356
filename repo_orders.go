package resumekit

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var markOrderPaidSQL = `UPDATE "orders" AS "ord"
SET
	"status" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"ord"."provider_order_id" = ?
RETURNING *;`

// Orders is the order store surface the handlers depend on.
type Orders interface {
	Create(ctx context.Context, record *Order) (*Order, error)
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*Order, error)
	GetByProviderOrderIDTx(ctx context.Context, tx bun.IDB, providerOrderID string) (*Order, error)
	MarkPaid(ctx context.Context, providerOrderID string) (*Order, error)
	MarkPaidTx(ctx context.Context, tx bun.IDB, providerOrderID string) (*Order, error)
}

type orders struct {
	repo repository.Repository[*Order]
	db   *bun.DB
}

var _ Orders = (*orders)(nil)

// NewOrdersRepository builds the bun-backed order store.
func NewOrdersRepository(db *bun.DB) Orders {
	repo := repository.NewRepository[*Order](db, repository.ModelHandlers[*Order]{
		NewRecord: func() *Order { return &Order{} },
		GetID: func(o *Order) uuid.UUID {
			if o == nil {
				return uuid.Nil
			}
			return o.ID
		},
		SetID: func(o *Order, id uuid.UUID) {
			if o != nil {
				o.ID = id
			}
		},
		GetIdentifier: func() string {
			return "provider_order_id"
		},
	})

	return &orders{
		repo: repo,
		db:   db,
	}
}

func (o *orders) Create(ctx context.Context, record *Order) (*Order, error) {
	if record != nil {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		if record.Status == "" {
			record.Status = OrderCreated
		}
	}
	return o.repo.Create(ctx, record)
}

func (o *orders) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*Order, error) {
	return o.GetByProviderOrderIDTx(ctx, o.db, providerOrderID)
}

func (o *orders) GetByProviderOrderIDTx(ctx context.Context, tx bun.IDB, providerOrderID string) (*Order, error) {
	record := &Order{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.provider_order_id = ?", providerOrderID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"provider_order_id": providerOrderID})
		}
		return nil, err
	}

	return record, nil
}

func (o *orders) MarkPaid(ctx context.Context, providerOrderID string) (*Order, error) {
	return o.MarkPaidTx(ctx, o.db, providerOrderID)
}

func (o *orders) MarkPaidTx(ctx context.Context, tx bun.IDB, providerOrderID string) (*Order, error) {
	res, err := o.repo.RawTx(ctx, tx, markOrderPaidSQL, OrderPaid, providerOrderID)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"provider_order_id": providerOrderID})
	}

	return res[0], nil
}
