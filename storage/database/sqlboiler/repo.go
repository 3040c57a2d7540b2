package boiledrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
)

// conds accumulates WHERE conditions with their positional args.
type conds struct {
	where []string
	args  []interface{}
}

// add appends a condition; every "?" in cond is replaced by the next positional placeholder.
func (c *conds) add(cond string, args ...interface{}) {
	for _, arg := range args {
		c.args = append(c.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(c.args)), 1)
	}
	c.where = append(c.where, "("+cond+")")
}

func (c *conds) String() string {
	if len(c.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.where, " AND ")
}

// orderBy always ends with the primary key so results are stable.
func orderBy(ordering []core.DBOrdering) string {
	list := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		list = append(list, ord.String())
	}
	list = append(list, "id ASC")
	return " ORDER BY " + strings.Join(list, ", ")
}

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// inTx runs fn in a transaction, committed when fn succeeds.
func inTx(ctx context.Context, db core.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
