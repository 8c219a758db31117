package supplier

import (
	"context"
	"database/sql"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

const (
	procProblemIDs = "CALL spGetProblemIds()"
	procCapacity   = "CALL spGetCartCap(?)"
	procItems      = "CALL spGetData(?)"
)

// MySQLConfig holds the credentials of the MySQL backend. None of them has a default.
type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Database string
}

// DSN renders the configuration as a go-sql-driver data source name.
func (c MySQLConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Host
	if _, _, err := net.SplitHostPort(c.Host); err != nil && c.Host != "" {
		cfg.Addr = net.JoinHostPort(c.Host, "3306")
	}
	cfg.DBName = c.Database
	return cfg.FormatDSN()
}

// MySQL reads problems through the assignment's stored procedures.
type MySQL struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQL opens the database and verifies the credentials with a ping.
func NewMySQL(ctx context.Context, cfg MySQLConfig, logger *zap.Logger) (*MySQL, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to mysql at %s: %w", cfg.Host, err)
	}
	return newMySQL(db, logger), nil
}

func newMySQL(db *sql.DB, logger *zap.Logger) *MySQL {
	return &MySQL{
		db:     db,
		logger: logger.With(zap.String("component", "supplier.mysql")),
	}
}

// call runs a stored procedure on a dedicated connection that is released when fn returns.
func (m *MySQL) call(ctx context.Context, query string, fn func(*sql.Rows) error, args ...any) error {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		m.logger.Error("failed to connect to mysql", zap.Error(err))
		return fmt.Errorf("connect to mysql: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			m.logger.Warn("failed to release mysql connection", zap.Error(err))
		}
	}()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		m.logger.Error("stored procedure failed", zap.String("query", query), zap.Error(err))
		return fmt.Errorf("%s: %w", query, err)
	}
	defer rows.Close()

	if err := fn(rows); err != nil {
		return fmt.Errorf("%s: %w", query, err)
	}
	return rows.Err()
}

// ListProblemIDs calls spGetProblemIds.
func (m *MySQL) ListProblemIDs(ctx context.Context) ([]packing.ProblemID, error) {
	var ids []packing.ProblemID
	err := m.call(ctx, procProblemIDs, func(rows *sql.Rows) error {
		for rows.Next() {
			var id int64
			if err := scanLeading(rows, &id); err != nil {
				return err
			}
			ids = append(ids, packing.ProblemID(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetProblem calls spGetCartCap and spGetData for one problem.
func (m *MySQL) GetProblem(ctx context.Context, id packing.ProblemID) (packing.Problem, error) {
	var (
		capacity float64
		found    bool
	)
	err := m.call(ctx, procCapacity, func(rows *sql.Rows) error {
		if !rows.Next() {
			return nil
		}
		found = true
		return scanLeading(rows, &capacity)
	}, int64(id))
	if err != nil {
		return packing.Problem{}, err
	}
	if !found {
		return packing.Problem{}, notFound(id)
	}

	items := make(packing.Items)
	err = m.call(ctx, procItems, func(rows *sql.Rows) error {
		for rows.Next() {
			var (
				itemID int64
				volume float64
			)
			if err := scanLeading(rows, &itemID, &volume); err != nil {
				return err
			}
			items[packing.ItemID(itemID)] = volume
		}
		return nil
	}, int64(id))
	if err != nil {
		return packing.Problem{}, err
	}

	p := packing.Problem{ID: id, Capacity: capacity, Items: items}
	if err := validateProblem(p); err != nil {
		return packing.Problem{}, err
	}
	return p, nil
}

// Close closes the database handle.
func (m *MySQL) Close() error {
	return m.db.Close()
}

// scanLeading scans the first len(dest) columns of the current row and discards the rest.
func scanLeading(rows *sql.Rows, dest ...any) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(cols) < len(dest) {
		return fmt.Errorf("expected at least %d columns, got %d", len(dest), len(cols))
	}
	targets := make([]any, len(cols))
	copy(targets, dest)
	for i := len(dest); i < len(cols); i++ {
		targets[i] = new(sql.RawBytes)
	}
	return rows.Scan(targets...)
}
