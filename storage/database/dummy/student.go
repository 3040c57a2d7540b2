package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func copyStudent(st student.Student) student.Student {
	if st.ClassID != nil {
		id := *st.ClassID
		st.ClassID = &id
	}
	return st
}

func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	st.ID = repo.db.pk
	st = copyStudent(st)
	repo.db.table[st.ID] = &st
	return copyStudent(st), nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids map[int64]bool
	if filter != nil && filter.IDs != nil {
		ids = make(map[int64]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}

	students := make([]student.Student, 0, len(repo.db.table))
	for _, st := range repo.db.table {
		if filter != nil {
			if filter.Search != "" {
				kw := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(st.Name), kw) && !strings.Contains(strings.ToLower(st.Phone), kw) {
					continue
				}
			}
			if filter.ClassID != nil && (st.ClassID == nil || *st.ClassID != *filter.ClassID) {
				continue
			}
			if filter.Unassigned && st.ClassID != nil {
				continue
			}
			if ids != nil && !ids[st.ID] {
				continue
			}
		}
		students = append(students, copyStudent(*st))
	}

	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range ordering {
			if c := compareStudents(students[i], students[j], ord.Field); c != 0 {
				return (c < 0) == ord.Ascending
			}
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func compareStudents(a, b student.Student, field string) int {
	switch field {
	case "id":
		return compareInt64(a.ID, b.ID)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "grade":
		return strings.Compare(a.Grade, b.Grade)
	case "created_at":
		return compareInt64(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (repo *studentRepository) GetStudent(_ context.Context, id int64) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.table[id]; ok {
		return copyStudent(*st), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) AssignClass(_ context.Context, classID int64, ids []int64) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n := 0
	for _, id := range ids {
		if st, ok := repo.db.table[id]; ok {
			cid := classID
			st.ClassID = &cid
			n++
		}
	}
	return n, nil
}
