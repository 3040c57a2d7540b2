package dummydb

import (
	"context"
	"sort"

	"github.com/mathsol/academy/core/classroom"
)

type classRepository struct {
	db *classTable
}

var _ classroom.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db.class}
}

func (repo *classRepository) CreateClass(_ context.Context, c classroom.Class) (classroom.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	c.ID = repo.db.pk
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *classRepository) QueryClasses(_ context.Context, ids ...int64) ([]classroom.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]classroom.Class, 0, len(repo.db.table))
	if len(ids) > 0 {
		for _, id := range ids {
			if c, ok := repo.db.table[id]; ok {
				classes = append(classes, *c)
			}
		}
	} else {
		for _, c := range repo.db.table {
			classes = append(classes, *c)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *classRepository) GetClass(_ context.Context, id int64) (classroom.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return classroom.Class{}, classroom.ErrNotFound
}
