package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PoolConfig sizes the connection pool of one database worker
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig keeps idle connections equal to open connections so
// connections are not closed and reopened under load.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    100,
		MaxIdleConns:    100,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 3 * time.Minute,
	}
}

// WithLimit caps open and idle connections at limit when it is positive
func (p PoolConfig) WithLimit(limit int) PoolConfig {
	if limit > 0 {
		p.MaxOpenConns = limit
		p.MaxIdleConns = limit
	}
	return p
}

// Connection wraps a pooled *sql.DB.
// sql.DB is already safe for concurrent use and is not wrapped in a mutex.
type Connection struct {
	db *sql.DB
}

// Open creates a pooled connection for driver and pings it
func Open(ctx context.Context, driver, dsn string, pool PoolConfig) (*Connection, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db}, nil
}

// NewConnection wraps an already opened database handle
func NewConnection(db *sql.DB) *Connection {
	return &Connection{db: db}
}

// QueryContext executes a statement that returns rows
func (c *Connection) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement without returning rows
func (c *Connection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// Conn pins a single session, used when statements share session state
func (c *Connection) Conn(ctx context.Context) (*sql.Conn, error) {
	return c.db.Conn(ctx)
}

// DB returns the underlying *sql.DB
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.db.Close()
}
