package boiledrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/student"
)

const studentColumns = "id, name, grade, school_name, phone, guardian_phone, avatar_color, class_id, created_at"

type studentRow struct {
	ID            int64      `boil:"id"`
	Name          string     `boil:"name"`
	Grade         string     `boil:"grade"`
	SchoolName    string     `boil:"school_name"`
	Phone         string     `boil:"phone"`
	GuardianPhone string     `boil:"guardian_phone"`
	AvatarColor   string     `boil:"avatar_color"`
	ClassID       null.Int64 `boil:"class_id"`
	CreatedAt     time.Time  `boil:"created_at"`
}

func (r studentRow) unboil() student.Student {
	return student.Student{
		ID:            r.ID,
		Name:          r.Name,
		Grade:         r.Grade,
		SchoolName:    r.SchoolName,
		Phone:         r.Phone,
		GuardianPhone: r.GuardianPhone,
		AvatarColor:   r.AvatarColor,
		ClassID:       r.ClassID.Ptr(),
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

type studentRepository struct {
	db core.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	var row studentRow
	err := queries.Raw(
		`INSERT INTO students (name, grade, school_name, phone, guardian_phone, avatar_color, class_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+studentColumns,
		st.Name, st.Grade, st.SchoolName, st.Phone, st.GuardianPhone, st.AvatarColor,
		null.Int64FromPtr(st.ClassID), st.CreatedAt.UTC(),
	).Bind(ctx, repo.db, &row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return row.unboil(), nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	var c conds
	if filter != nil {
		// students with Name or Phone matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			c.add("name ILIKE ? OR phone ILIKE ?", val, val)
		}
		if filter.ClassID != nil {
			c.add("class_id = ?", *filter.ClassID)
		}
		if filter.Unassigned {
			c.add("class_id IS NULL")
		}
		if filter.IDs != nil {
			c.add("id = ANY(?)", pq.Array(filter.IDs))
		}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "id", Ascending: true}}
	}

	var rows []studentRow
	err := queries.Raw("SELECT "+studentColumns+" FROM students"+c.String()+orderBy(ordering), c.args...).
		Bind(ctx, repo.db, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.unboil())
	}
	return students, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id int64) (student.Student, error) {
	var row studentRow
	err := queries.Raw("SELECT "+studentColumns+" FROM students WHERE id = $1", id).Bind(ctx, repo.db, &row)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student")
	}
	return row.unboil(), nil
}

func (repo studentRepository) AssignClass(ctx context.Context, classID int64, ids []int64) (int, error) {
	res, err := queries.Raw("UPDATE students SET class_id = $1 WHERE id = ANY($2)", classID, pq.Array(ids)).
		ExecContext(ctx, repo.db)
	if err != nil {
		return 0, errors.Wrap(err, "updating students")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting updated students")
	}
	return int(n), nil
}
