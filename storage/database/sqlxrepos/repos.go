// Package sqlxrepos implements the domain repositories on top of postgres.
//
// Every method takes an optional trailing executor so services can group
// several calls into one transaction; without one the repository's own
// connection pool is used.
package sqlxrepos

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

func executor(db core.DB, exec ...core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return db
}

// trapNoRowsErr swaps sql.ErrNoRows for the domain's own sentinel.
func trapNoRowsErr(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}
