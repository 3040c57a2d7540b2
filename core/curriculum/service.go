package curriculum

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
)

var ErrCatalogSeeded = errors.Wrap(core.ErrConflict, "curriculum catalog is already seeded")

type (
	Repository interface {
		QueryUnits(ctx context.Context) ([]Unit, error)
		// CreateUnits inserts all units or none.
		CreateUnits(ctx context.Context, units []Unit) ([]Unit, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Catalog returns every unit ordered by sequence.
func (svc *Service) Catalog(ctx context.Context) (Catalog, error) {
	units, err := svc.repo.QueryUnits(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying units")
	}
	return NewCatalog(units), nil
}

// CheckUnitIDs fails with a core.ValidationError if any id is not part of the catalog.
func (svc *Service) CheckUnitIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	cat, err := svc.Catalog(ctx)
	if err != nil {
		return err
	}
	if unknown := cat.Unknown(ids); len(unknown) > 0 {
		strs := make([]string, 0, len(unknown))
		for _, id := range unknown {
			strs = append(strs, strconv.FormatInt(id, 10))
		}
		return core.NewValidationError(nil, core.FieldError{
			Field: "completed_unit_ids",
			Error: "unknown curriculum units: " + strings.Join(strs, ", "),
		})
	}
	return nil
}

// Seed creates the catalog. Units are immutable once seeded, so a non-empty catalog is never re-seeded.
func (svc *Service) Seed(ctx context.Context, nus []NewUnit) (Catalog, error) {
	if len(nus) == 0 {
		return nil, core.NewValidationError(errors.New("no curriculum units to seed"))
	}
	seen := make(map[int]bool, len(nus))
	units := make([]Unit, 0, len(nus))
	for i := range nus {
		nu := &nus[i]
		if err := nu.Validate(svc.validate); err != nil {
			return nil, errors.Wrapf(err, "unit #%d", i+1)
		}
		if seen[nu.Sequence] {
			return nil, core.NewValidationError(nil, core.FieldError{
				Field: "sequence",
				Error: fmt.Sprintf("duplicate sequence %d", nu.Sequence),
			})
		}
		seen[nu.Sequence] = true
		units = append(units, Unit{Category: nu.Category, Title: nu.Title, Sequence: nu.Sequence})
	}

	existing, err := svc.repo.QueryUnits(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying units")
	}
	if len(existing) > 0 {
		return nil, ErrCatalogSeeded
	}

	created, err := svc.repo.CreateUnits(ctx, units)
	if err != nil {
		return nil, errors.Wrap(err, "creating units")
	}
	return NewCatalog(created), nil
}
