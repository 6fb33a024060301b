package admin

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	RemoveSubject(ctx context.Context, id string) (int64, error)
	Profiles() Profiles
	Accounts() Accounts
}

type mngr struct {
	db       *bun.DB
	profiles Profiles
	accounts Accounts
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:       db,
		profiles: NewProfilesRepository(db),
		accounts: NewAccountsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.profiles == nil {
		return errors.New("repository profiles should be initialized")
	}

	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
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

// RemoveSubject deletes the profile row and the credential record in one
// transaction. The count reports profile rows removed; a leftover credential
// with no profile is still cleaned up.
func (m mngr) RemoveSubject(ctx context.Context, id string) (int64, error) {
	var affected int64

	err := m.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n, err := m.profiles.DeleteTx(ctx, tx, id)
		if err != nil {
			return err
		}
		affected = n

		if _, err := m.accounts.DeleteByIDTx(ctx, tx, id); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return affected, nil
}

func (m mngr) Profiles() Profiles {
	return m.profiles
}

func (m mngr) Accounts() Accounts {
	return m.accounts
}
