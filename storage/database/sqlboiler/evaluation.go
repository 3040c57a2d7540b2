package boiledrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/evaluation"
)

const logColumns = "id, student_id, created_at, score, completed_unit_ids, homework, attitude, comment"

type logRow struct {
	ID               int64         `boil:"id"`
	StudentID        int64         `boil:"student_id"`
	CreatedAt        time.Time     `boil:"created_at"`
	Score            int           `boil:"score"`
	CompletedUnitIDs pq.Int64Array `boil:"completed_unit_ids"`
	Homework         string        `boil:"homework"`
	Attitude         string        `boil:"attitude"`
	Comment          string        `boil:"comment"`
}

func (r logRow) unboil() evaluation.Log {
	ids := []int64(r.CompletedUnitIDs)
	if ids == nil {
		ids = []int64{}
	}
	return evaluation.Log{
		ID:               r.ID,
		StudentID:        r.StudentID,
		CreatedAt:        r.CreatedAt.UTC(),
		Score:            r.Score,
		CompletedUnitIDs: ids,
		Homework:         evaluation.HomeworkStatus(r.Homework),
		Attitude:         evaluation.Attitude(r.Attitude),
		Comment:          r.Comment,
	}
}

type logRepository struct {
	db core.DB
}

var _ evaluation.Repository = (*logRepository)(nil) // interface compliance check

func NewLogRepository(db core.DB) *logRepository {
	return &logRepository{db: db}
}

func (repo logRepository) CreateLog(ctx context.Context, l evaluation.Log) (evaluation.Log, error) {
	var row logRow
	err := queries.Raw(
		`INSERT INTO evaluation_logs (student_id, created_at, score, completed_unit_ids, homework, attitude, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+logColumns,
		l.StudentID, l.CreatedAt.UTC(), l.Score, pq.Int64Array(l.CompletedUnitIDs),
		string(l.Homework), string(l.Attitude), l.Comment,
	).Bind(ctx, repo.db, &row)
	if err != nil {
		return evaluation.Log{}, errors.Wrap(err, "inserting log")
	}
	return row.unboil(), nil
}

func (repo logRepository) filter(filter evaluation.QueryFilter) *conds {
	c := new(conds)
	if filter.StudentIDs != nil {
		c.add("student_id = ANY(?)", pq.Array(filter.StudentIDs))
	}
	if !filter.CreatedFrom.IsZero() {
		c.add("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		c.add("created_at < ?", filter.CreatedTo.UTC())
	}
	return c
}

func (repo logRepository) QueryLogs(ctx context.Context, filter evaluation.QueryFilter, ordering []core.DBOrdering, limit int) ([]evaluation.Log, error) {
	c := repo.filter(filter)
	q := "SELECT " + logColumns + " FROM evaluation_logs" + c.String() + orderBy(ordering)
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	var rows []logRow
	if err := queries.Raw(q, c.args...).Bind(ctx, repo.db, &rows); err != nil {
		return nil, errors.Wrap(err, "querying logs")
	}
	logs := make([]evaluation.Log, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, r.unboil())
	}
	return logs, nil
}
