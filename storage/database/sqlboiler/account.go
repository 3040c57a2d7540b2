package boiledrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/account"
)

type accountRow struct {
	ID        string    `boil:"id"`
	Role      string    `boil:"role"`
	Phone     string    `boil:"phone"`
	CreatedAt time.Time `boil:"created_at"`
}

func (r accountRow) unboil() account.Account {
	return account.Account{ID: r.ID, Role: account.Role(r.Role), Phone: r.Phone, CreatedAt: r.CreatedAt.UTC()}
}

type accountRepository struct {
	db core.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db core.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (repo accountRepository) GetAccount(ctx context.Context, id string) (account.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return account.Account{}, account.ErrNotFound
	}
	var row accountRow
	err := queries.Raw("SELECT id, role, phone, created_at FROM accounts WHERE id = $1", id).Bind(ctx, repo.db, &row)
	if err != nil {
		return account.Account{}, trapNoRowsErr(err, account.ErrNotFound, "finding account")
	}
	return row.unboil(), nil
}

func (repo accountRepository) CreateAccountWithLinks(ctx context.Context, acc account.Account, studentIDs []int64) (int, error) {
	var linked int
	err := inTx(ctx, repo.db, func(tx *sql.Tx) error {
		_, err := queries.Raw(
			"INSERT INTO accounts (id, role, phone, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING",
			acc.ID, string(acc.Role), acc.Phone, acc.CreatedAt.UTC(),
		).ExecContext(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "inserting account")
		}

		// a concurrent registration may have won the insert
		var role string
		if err = queries.Raw("SELECT role FROM accounts WHERE id = $1", acc.ID).QueryRowContext(ctx, tx).Scan(&role); err != nil {
			return errors.Wrap(err, "checking account role")
		}
		if account.Role(role) != acc.Role {
			return account.ErrRoleConflict
		}

		if len(studentIDs) == 0 {
			return nil
		}
		res, err := queries.Raw(
			`INSERT INTO parent_links (parent_id, student_id)
			SELECT $1, s.id FROM students s WHERE s.id = ANY($2)
			ON CONFLICT DO NOTHING`,
			acc.ID, pq.Array(studentIDs),
		).ExecContext(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "inserting parent links")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "counting parent links")
		}
		linked = int(n)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return linked, nil
}

func (repo accountRepository) QueryLinkedStudentIDs(ctx context.Context, parentID string) ([]int64, error) {
	var ids pq.Int64Array
	err := queries.Raw(
		"SELECT COALESCE(array_agg(student_id ORDER BY student_id), '{}') FROM parent_links WHERE parent_id = $1", parentID,
	).QueryRowContext(ctx, repo.db).Scan(&ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying parent links")
	}
	return []int64(ids), nil
}
