package boiledrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/curriculum"
)

type unitRow struct {
	ID       int64  `boil:"id"`
	Category string `boil:"category"`
	Title    string `boil:"title"`
	Sequence int    `boil:"sequence"`
}

func (r unitRow) unboil() curriculum.Unit {
	return curriculum.Unit{ID: r.ID, Category: r.Category, Title: r.Title, Sequence: r.Sequence}
}

type unitRepository struct {
	db core.DB
}

var _ curriculum.Repository = (*unitRepository)(nil) // interface compliance check

func NewUnitRepository(db core.DB) *unitRepository {
	return &unitRepository{db: db}
}

func (repo unitRepository) QueryUnits(ctx context.Context) ([]curriculum.Unit, error) {
	var rows []unitRow
	err := queries.Raw("SELECT id, category, title, sequence FROM curriculum_units ORDER BY sequence, id").
		Bind(ctx, repo.db, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying units")
	}
	units := make([]curriculum.Unit, 0, len(rows))
	for _, r := range rows {
		units = append(units, r.unboil())
	}
	return units, nil
}

func (repo unitRepository) CreateUnits(ctx context.Context, units []curriculum.Unit) ([]curriculum.Unit, error) {
	created := make([]curriculum.Unit, 0, len(units))
	err := inTx(ctx, repo.db, func(tx *sql.Tx) error {
		for _, u := range units {
			var row unitRow
			err := queries.Raw(
				"INSERT INTO curriculum_units (category, title, sequence) VALUES ($1, $2, $3) RETURNING id, category, title, sequence",
				u.Category, u.Title, u.Sequence,
			).Bind(ctx, tx, &row)
			if err != nil {
				return errors.Wrapf(err, "inserting unit %q", u.Title)
			}
			created = append(created, row.unboil())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
