package dummydb

import (
	"context"
	"sort"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/evaluation"
)

type logRepository struct {
	db *logTable
}

var _ evaluation.Repository = (*logRepository)(nil) // interface compliance check

func NewLogRepository(db *DB) *logRepository {
	return &logRepository{db: db.log}
}

func copyLog(l evaluation.Log) evaluation.Log {
	l.CompletedUnitIDs = copyIDs(l.CompletedUnitIDs)
	return l
}

func (repo *logRepository) CreateLog(_ context.Context, l evaluation.Log) (evaluation.Log, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	l.ID = repo.db.pk
	l = copyLog(l)
	repo.db.table[l.ID] = &l
	return copyLog(l), nil
}

func (repo *logRepository) query(filter evaluation.QueryFilter) []evaluation.Log {
	var ids map[int64]bool
	if filter.StudentIDs != nil {
		ids = make(map[int64]bool, len(filter.StudentIDs))
		for _, id := range filter.StudentIDs {
			ids[id] = true
		}
	}

	logs := make([]evaluation.Log, 0)
	for _, l := range repo.db.table {
		if ids != nil && !ids[l.StudentID] {
			continue
		}
		if !filter.CreatedFrom.IsZero() && l.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && !l.CreatedAt.Before(filter.CreatedTo) {
			continue
		}
		logs = append(logs, copyLog(*l))
	}
	return logs
}

func (repo *logRepository) QueryLogs(_ context.Context, filter evaluation.QueryFilter, ordering []core.DBOrdering, limit int) ([]evaluation.Log, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	logs := repo.query(filter)
	sort.SliceStable(logs, func(i, j int) bool {
		for _, ord := range ordering {
			var c int
			switch ord.Field {
			case "created_at":
				c = compareInt64(logs[i].CreatedAt.UnixNano(), logs[j].CreatedAt.UnixNano())
			case "id":
				c = compareInt64(logs[i].ID, logs[j].ID)
			case "score":
				c = compareInt64(int64(logs[i].Score), int64(logs[j].Score))
			}
			if c != 0 {
				return (c < 0) == ord.Ascending
			}
		}
		return logs[i].ID < logs[j].ID
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}
