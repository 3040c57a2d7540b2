package dummydb

import (
	"context"
	"sort"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/curriculum"
)

type unitRepository struct {
	db *unitTable
}

var _ curriculum.Repository = (*unitRepository)(nil) // interface compliance check

func NewUnitRepository(db *DB) *unitRepository {
	return &unitRepository{db: db.unit}
}

func (repo *unitRepository) QueryUnits(_ context.Context) ([]curriculum.Unit, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	units := make([]curriculum.Unit, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		units = append(units, *u)
	}
	sort.Slice(units, func(i, j int) bool {
		if units[i].Sequence == units[j].Sequence {
			return units[i].ID < units[j].ID
		}
		return units[i].Sequence < units[j].Sequence
	})
	return units, nil
}

func (repo *unitRepository) CreateUnits(_ context.Context, units []curriculum.Unit) ([]curriculum.Unit, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	seqs := make(map[int]bool, len(repo.db.table)+len(units))
	for _, u := range repo.db.table {
		seqs[u.Sequence] = true
	}
	for _, u := range units {
		if seqs[u.Sequence] {
			return nil, core.ErrConflict
		}
		seqs[u.Sequence] = true
	}

	created := make([]curriculum.Unit, 0, len(units))
	for _, u := range units {
		repo.db.pk++
		u.ID = repo.db.pk
		unit := u
		repo.db.table[unit.ID] = &unit
		created = append(created, unit)
	}
	return created, nil
}
