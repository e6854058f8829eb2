// Package database builds a database engine, a session factory, and
// reflected schema metadata from a small set of connection parameters.
// The engine (a pgx connection pool) is the sole owner of network
// connections and is safe to share; sessions are short-lived handles for
// one unit of work, released by the caller.
package database

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luismalamoc/my-utility-package/apperrors"
)

// ConnectionParams describes one database target. All fields feed the
// connection URL; validation beyond URL assembly is delegated to the
// driver.
type ConnectionParams struct {
	// Driver is the URL scheme, e.g. "postgres".
	Driver   string
	User     string
	Password string
	Host     string
	Port     int
	Database string
	// ConnectTimeout bounds connection establishment. Zero means the
	// driver default.
	ConnectTimeout time.Duration
}

// URL assembles the connection URL. Credentials are percent-encoded by
// net/url, so special characters in user or password are safe.
func (p ConnectionParams) URL() string {
	u := url.URL{
		Scheme: p.Driver,
		User:   url.UserPassword(p.User, p.Password),
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.Database,
	}

	if p.ConnectTimeout > 0 {
		seconds := int((p.ConnectTimeout + time.Second - 1) / time.Second)
		q := url.Values{}
		q.Set("connect_timeout", strconv.Itoa(seconds))
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// Connection owns one engine, a session factory, and lazily reflected
// schema metadata.
type Connection struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	meta *Metadata
}

// Connect builds the engine and verifies it with a ping. The pool is
// closed again if the ping fails, so no partial connection leaks out.
func Connect(ctx context.Context, params ConnectionParams) (*Connection, error) {
	poolCfg, err := pgxpool.ParseConfig(params.URL())
	if err != nil {
		return nil, apperrors.ConnectionError("failed to parse connection URL", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, apperrors.ConnectionError("failed to create connection pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.ConnectionError("failed to ping database", err).
			WithContext("host", params.Host).
			WithContext("database", params.Database)
	}

	slog.Info("Database connected",
		"host", params.Host,
		"database", params.Database,
		"max_conns", poolCfg.MaxConns,
	)
	return &Connection{pool: pool}, nil
}

// Engine returns the underlying pool. Safe for concurrent use.
func (c *Connection) Engine() *pgxpool.Pool {
	return c.pool
}

// Session acquires a session for one unit of work. The caller must call
// Release when done.
func (c *Connection) Session(ctx context.Context) (*Session, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, apperrors.ConnectionError("failed to acquire session", err)
	}
	return &Session{conn: conn}, nil
}

// Close releases the engine and all its connections.
func (c *Connection) Close() {
	c.pool.Close()
}

// Session is a scoped unit-of-work handle bound to the engine. It is for
// exclusive use by one caller at a time.
type Session struct {
	conn *pgxpool.Conn
}

func (s *Session) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.conn.Query(ctx, sql, args...)
}

func (s *Session) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.conn.QueryRow(ctx, sql, args...)
}

func (s *Session) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.conn.Exec(ctx, sql, args...)
}

// Begin starts a transaction on the session's connection.
func (s *Session) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.conn.Begin(ctx)
}

// Release returns the session's connection to the engine.
func (s *Session) Release() {
	s.conn.Release()
}
