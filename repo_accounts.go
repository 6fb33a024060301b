package admin

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the credential store behind the session broker
type Accounts interface {
	AccountStore

	Create(ctx context.Context, record *Account) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	GetOrCreate(ctx context.Context, record *Account) (*Account, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id string) (int64, error)
}

type accounts struct {
	repo repository.Repository[*Account]
	db   *bun.DB
}

var _ Accounts = (*accounts)(nil)

// NewAccountsRepository builds the bun-backed account store
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

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	record := &Account{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
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
	return a.CreateTx(ctx, a.db, record)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.repo.CreateTx(ctx, tx, record)
}

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

func (a *accounts) DeleteByID(ctx context.Context, id string) (int64, error) {
	return a.DeleteByIDTx(ctx, a.db, id)
}

func (a *accounts) DeleteByIDTx(ctx context.Context, tx bun.IDB, id string) (int64, error) {
	res, err := tx.NewDelete().
		Model((*Account)(nil)).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return affected, nil
}
