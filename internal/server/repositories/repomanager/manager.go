// Package repomanager wires the server repositories to a shared database
// handle and owns schema migration.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/staffolio/staffolio/internal/server/repositories/portfolios"
	"github.com/staffolio/staffolio/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Portfolios() portfolios.Repository
}
