package dummydb

import (
	"context"
	"sort"

	"github.com/mathsol/academy/core/account"
)

type accountRepository struct {
	db       *accountTable
	students *studentTable
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) *accountRepository {
	return &accountRepository{db: db.account, students: db.student}
}

func (repo *accountRepository) GetAccount(_ context.Context, id string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if acc, ok := repo.db.table[id]; ok {
		return *acc, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) CreateAccountWithLinks(_ context.Context, acc account.Account, studentIDs []int64) (int, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()
	repo.db.Lock()
	defer repo.db.Unlock()

	if existing, ok := repo.db.table[acc.ID]; ok {
		if existing.Role != acc.Role {
			return 0, account.ErrRoleConflict
		}
	} else {
		a := acc
		repo.db.table[acc.ID] = &a
	}

	links, ok := repo.db.links[acc.ID]
	if !ok {
		links = make(map[int64]bool)
		repo.db.links[acc.ID] = links
	}
	n := 0
	for _, id := range studentIDs {
		if _, exists := repo.students.table[id]; !exists || links[id] {
			continue
		}
		links[id] = true
		n++
	}
	return n, nil
}

func (repo *accountRepository) QueryLinkedStudentIDs(_ context.Context, parentID string) ([]int64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]int64, 0, len(repo.db.links[parentID]))
	for id := range repo.db.links[parentID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
