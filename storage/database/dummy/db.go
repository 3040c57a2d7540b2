package dummydb

import (
	"sync"

	"github.com/mathsol/academy/core/account"
	"github.com/mathsol/academy/core/classroom"
	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
)

type (
	// DB is an in-memory store. Each table is guarded by its own lock; a method
	// touching two tables always locks them in declaration order.
	DB struct {
		unit    *unitTable
		class   *classTable
		student *studentTable
		log     *logTable
		account *accountTable
	}

	unitTable struct {
		sync.RWMutex
		pk    int64
		table map[int64]*curriculum.Unit
	}

	classTable struct {
		sync.RWMutex
		pk    int64
		table map[int64]*classroom.Class
	}

	studentTable struct {
		sync.RWMutex
		pk    int64
		table map[int64]*student.Student
	}

	logTable struct {
		sync.RWMutex
		pk    int64
		table map[int64]*evaluation.Log
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*account.Account
		links map[string]map[int64]bool // {parent_id: {student_id}}
	}
)

func Open() *DB {
	return &DB{
		unit:    &unitTable{table: make(map[int64]*curriculum.Unit)},
		class:   &classTable{table: make(map[int64]*classroom.Class)},
		student: &studentTable{table: make(map[int64]*student.Student)},
		log:     &logTable{table: make(map[int64]*evaluation.Log)},
		account: &accountTable{table: make(map[string]*account.Account), links: make(map[string]map[int64]bool)},
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	fresh := Open()
	db.unit.Lock()
	db.unit.table, db.unit.pk = fresh.unit.table, 0
	db.unit.Unlock()
	db.class.Lock()
	db.class.table, db.class.pk = fresh.class.table, 0
	db.class.Unlock()
	db.student.Lock()
	db.student.table, db.student.pk = fresh.student.table, 0
	db.student.Unlock()
	db.log.Lock()
	db.log.table, db.log.pk = fresh.log.table, 0
	db.log.Unlock()
	db.account.Lock()
	db.account.table, db.account.links = fresh.account.table, fresh.account.links
	db.account.Unlock()
}

func copyIDs(ids []int64) []int64 {
	res := make([]int64, len(ids))
	copy(res, ids)
	return res
}
