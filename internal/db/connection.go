package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"modernc.org/sqlite"

	"github.com/sebuszqo/ExpenseTracker/internal/logger"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// CaseFoldFunc is the SQLite function lowering text with Unicode rules.
// The built-in lower() only folds ASCII letters.
const CaseFoldFunc = "casefold"

var (
	registerFuncsOnce sync.Once
	registerFuncsErr  error
)

func registerSQLiteFunctions() error {
	registerFuncsOnce.Do(func() {
		registerFuncsErr = sqlite.RegisterDeterministicScalarFunction(CaseFoldFunc, 1, caseFold)
	})
	return registerFuncsErr
}

func caseFold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// DBService represents a service that interacts with a database.
type DBService struct {
	DB     *sql.DB
	Driver string
}

// NewDBService opens a connection pool for the given driver ("pgx" or "sqlite")
// and verifies it with a ping.
func NewDBService(driver, connStr string) (*DBService, error) {
	if connStr == "" {
		return nil, fmt.Errorf("missing connection string for driver %s", driver)
	}

	if driver == "sqlite" {
		if err := registerSQLiteFunctions(); err != nil {
			return nil, errors.Wrap(err, "could not register sqlite functions")
		}
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, errors.Wrap(err, "could not open db connection")
	}

	if driver == "sqlite" {
		// a single connection keeps ":memory:" databases shared and serializes writers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not connect to the database")
	}

	return &DBService{DB: db, Driver: driver}, nil
}

// EnsureSchema creates the expenses table and its indexes when missing.
func (s *DBService) EnsureSchema(ctx context.Context) error {
	name := "schema/postgres.sql"
	if s.Driver == "sqlite" {
		name = "schema/sqlite.sql"
	}
	script, err := schemaFS.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "read schema")
	}

	for _, stmt := range strings.Split(string(script), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "apply schema %s", name)
		}
	}
	return nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *DBService) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	err := s.DB.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	return stats
}

// Close closes the database connection.
func (s *DBService) Close() error {
	logger.Info("Closing database connection", zap.String("driver", s.Driver))
	return s.DB.Close()
}
