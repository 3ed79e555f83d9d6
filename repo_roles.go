package hrauth

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles is the store boundary for role records.
type Roles interface {
	GetByName(ctx context.Context, name string) (*Role, error)
	Create(ctx context.Context, record *Role) (*Role, error)
	GetOrCreate(ctx context.Context, record *Role) (*Role, error)
}

type roles struct {
	repo repository.Repository[*Role]
	db   *bun.DB
}

var _ Roles = (*roles)(nil)

// NewRolesRepository builds the bun-backed Roles store.
func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &roles{
		repo: repo,
		db:   db,
	}
}

func (r *roles) GetByName(ctx context.Context, name string) (*Role, error) {
	record := &Role{}

	err := r.db.NewSelect().
		Model(record).
		Where(`?TableAlias."name" = ?`, name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"name": name})
		}
		return nil, err
	}

	return record, nil
}

func (r *roles) Create(ctx context.Context, record *Role) (*Role, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.repo.CreateTx(ctx, r.db, record)
}

func (r *roles) GetOrCreate(ctx context.Context, record *Role) (*Role, error) {
	existing, err := r.GetByName(ctx, record.Name)
	if err == nil {
		return existing, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return r.Create(ctx, record)
}

// DefaultRoles are seeded into a fresh database so registration has
// something to bind to.
func DefaultRoles() []*Role {
	return []*Role{
		{Name: RoleAdmin, Description: "Full administrative access"},
		{Name: RoleManager, Description: "Manages areas, schedules and inductions"},
		{Name: RoleEmployee, Description: "Self-service employee access"},
	}
}

// SeedRoles makes sure the default roles exist.
func SeedRoles(ctx context.Context, repo Roles) error {
	for _, role := range DefaultRoles() {
		if _, err := repo.GetOrCreate(ctx, role); err != nil {
			return err
		}
	}
	return nil
}
