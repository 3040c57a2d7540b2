package boiledrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/classroom"
)

const classColumns = "id, name, schedule, target_grade, created_at"

type classRow struct {
	ID          int64     `boil:"id"`
	Name        string    `boil:"name"`
	Schedule    string    `boil:"schedule"`
	TargetGrade string    `boil:"target_grade"`
	CreatedAt   time.Time `boil:"created_at"`
}

func (r classRow) unboil() classroom.Class {
	return classroom.Class{
		ID:          r.ID,
		Name:        r.Name,
		Schedule:    r.Schedule,
		TargetGrade: r.TargetGrade,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type classRepository struct {
	db core.DB
}

var _ classroom.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db core.DB) *classRepository {
	return &classRepository{db: db}
}

func (repo classRepository) CreateClass(ctx context.Context, c classroom.Class) (classroom.Class, error) {
	var row classRow
	err := queries.Raw(
		"INSERT INTO classes (name, schedule, target_grade, created_at) VALUES ($1, $2, $3, $4) RETURNING "+classColumns,
		c.Name, c.Schedule, c.TargetGrade, c.CreatedAt.UTC(),
	).Bind(ctx, repo.db, &row)
	if err != nil {
		return classroom.Class{}, errors.Wrap(err, "inserting class")
	}
	return row.unboil(), nil
}

func (repo classRepository) QueryClasses(ctx context.Context, ids ...int64) ([]classroom.Class, error) {
	var c conds
	if len(ids) > 0 {
		c.add("id = ANY(?)", pq.Array(ids))
	}
	var rows []classRow
	err := queries.Raw("SELECT "+classColumns+" FROM classes"+c.String()+" ORDER BY id", c.args...).
		Bind(ctx, repo.db, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]classroom.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.unboil())
	}
	return classes, nil
}

func (repo classRepository) GetClass(ctx context.Context, id int64) (classroom.Class, error) {
	var row classRow
	err := queries.Raw("SELECT "+classColumns+" FROM classes WHERE id = $1", id).Bind(ctx, repo.db, &row)
	if err != nil {
		return classroom.Class{}, trapNoRowsErr(err, classroom.ErrNotFound, "finding class")
	}
	return row.unboil(), nil
}
