package admin

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ChangeProfileRoleSQL updates exactly one row and requests it back so the
// caller can tell a confirmed write from a silent no-op.
var ChangeProfileRoleSQL = `UPDATE "profiles" AS "prf"
SET
	"role" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"prf"."id" = ?
RETURNING *;`

// Profiles is the profile repository backing the gate and the mutation service
type Profiles interface {
	ProfileStore

	Create(ctx context.Context, record *Profile) (*Profile, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Profile) (*Profile, error)
	UpdateRoleTx(ctx context.Context, tx bun.IDB, id string, role Role) ([]*Profile, error)
	DeleteTx(ctx context.Context, tx bun.IDB, id string) (int64, error)
	GetOrCreate(ctx context.Context, record *Profile) (*Profile, error)
}

type profiles struct {
	repo repository.Repository[*Profile]
	db   *bun.DB
}

var _ Profiles = (*profiles)(nil)

// NewProfilesRepository builds the bun-backed profile store
func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &profiles{
		repo: repo,
		db:   db,
	}
}

func (p *profiles) GetByID(ctx context.Context, id string) (*Profile, error) {
	record := &Profile{}

	err := p.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}

	return record, nil
}

func (p *profiles) List(ctx context.Context) ([]*Profile, error) {
	var records []*Profile

	err := p.db.NewSelect().
		Model(&records).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (p *profiles) UpdateRole(ctx context.Context, id string, role Role) ([]*Profile, error) {
	return p.UpdateRoleTx(ctx, p.db, id, role)
}

func (p *profiles) UpdateRoleTx(ctx context.Context, tx bun.IDB, id string, role Role) ([]*Profile, error) {
	return p.repo.RawTx(ctx, tx, ChangeProfileRoleSQL, string(role), strings.TrimSpace(id))
}

func (p *profiles) Delete(ctx context.Context, id string) (int64, error) {
	return p.DeleteTx(ctx, p.db, id)
}

func (p *profiles) DeleteTx(ctx context.Context, tx bun.IDB, id string) (int64, error) {
	res, err := tx.NewDelete().
		Model((*Profile)(nil)).
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

func (p *profiles) Create(ctx context.Context, record *Profile) (*Profile, error) {
	return p.CreateTx(ctx, p.db, record)
}

func (p *profiles) CreateTx(ctx context.Context, tx bun.IDB, record *Profile) (*Profile, error) {
	prepareProfileDefaults(record)
	return p.repo.CreateTx(ctx, tx, record)
}

func (p *profiles) GetOrCreate(ctx context.Context, record *Profile) (*Profile, error) {
	var existing *Profile
	var err error

	if record.ID != uuid.Nil {
		existing, err = p.GetByID(ctx, record.ID.String())
	} else {
		existing, err = p.getByEmail(ctx, record.Email)
	}

	if err == nil {
		return existing, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return p.Create(ctx, record)
}

func (p *profiles) getByEmail(ctx context.Context, email string) (*Profile, error) {
	record := &Profile{}

	err := p.db.NewSelect().
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

func prepareProfileDefaults(record *Profile) {
	if record == nil {
		return
	}

	if record.Role == RoleUnset {
		record.Role = RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
