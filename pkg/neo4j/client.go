package neo4j

import (
	"context"
	"fmt"
	"time"

	neo4jdrv "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"go.uber.org/zap"
)

// Connection timeout for the initial connectivity check during client creation
const defaultVerifyTimeout = 10 * time.Second

// Client wraps the Neo4j driver behind the narrow surface the repositories
// consume, so the bolt wire driver never leaks past this package.
type Client interface {
	// Session opens a write session. The caller owns it for its lifetime and
	// must close it on every exit path.
	Session(ctx context.Context) Session
	// Ping checks connectivity to the server
	Ping(ctx context.Context) error
	// Close releases the underlying driver and its connection pool
	Close(ctx context.Context) error
}

// Session is one graph-store work scope.
type Session interface {
	// ExecuteWrite runs work inside a write transaction, committing on nil
	// error and rolling back otherwise.
	ExecuteWrite(ctx context.Context, work TransactionWork) (any, error)
	Close(ctx context.Context) error
}

// TransactionWork is executed inside a managed write transaction.
type TransactionWork func(tx Transaction) (any, error)

// Transaction runs parameterized statements inside one transaction boundary.
type Transaction interface {
	Run(ctx context.Context, cypher string, params map[string]any) (Result, error)
}

// Result iterates the records produced by one statement.
type Result interface {
	// Next advances to the next record, returning false when exhausted or failed
	Next(ctx context.Context) bool
	// Err returns the error that terminated iteration, if any
	Err() error
}

type client struct {
	driver   neo4jdrv.DriverWithContext
	database string
	logger   *zap.SugaredLogger
}

// New creates a new Neo4j client and verifies connectivity. An empty username
// connects without authentication.
func New(cfg Config, sugar *zap.SugaredLogger) (Client, error) {
	auth := neo4jdrv.NoAuth()
	if cfg.Username != "" {
		auth = neo4jdrv.BasicAuth(cfg.Username, cfg.Password, cfg.Realm)
	}

	driver, err := neo4jdrv.NewDriverWithContext(cfg.URI, auth, func(c *config.Config) {
		if cfg.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
		}
		if cfg.ConnectionTimeout > 0 {
			c.SocketConnectTimeout = time.Duration(cfg.ConnectionTimeout) * time.Second
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	// Test the connection. If this fails the service should not start, as
	// the graph store is critical for the service to function.
	ctx, cancel := context.WithTimeout(context.Background(), defaultVerifyTimeout)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		if sugar != nil {
			sugar.Errorw("failed to verify neo4j connectivity", "uri", cfg.URI, "error", err)
		}
		// Close the driver to avoid resource leaks, but ignore close errors since we're already failing
		_ = driver.Close(ctx)
		return nil, err
	}

	return &client{driver: driver, database: cfg.Database, logger: sugar}, nil
}

func (c *client) Session(ctx context.Context) Session {
	s := c.driver.NewSession(ctx, neo4jdrv.SessionConfig{
		AccessMode:   neo4jdrv.AccessModeWrite,
		DatabaseName: c.database,
	})
	return &session{inner: s}
}

func (c *client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

func (c *client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

type session struct {
	inner neo4jdrv.SessionWithContext
}

func (s *session) ExecuteWrite(ctx context.Context, work TransactionWork) (any, error) {
	return s.inner.ExecuteWrite(ctx, func(tx neo4jdrv.ManagedTransaction) (any, error) {
		return work(&transaction{inner: tx})
	})
}

func (s *session) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

type transaction struct {
	inner neo4jdrv.ManagedTransaction
}

func (t *transaction) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	res, err := t.inner.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return &result{inner: res}, nil
}

type result struct {
	inner neo4jdrv.ResultWithContext
}

func (r *result) Next(ctx context.Context) bool {
	return r.inner.Next(ctx)
}

func (r *result) Err() error {
	return r.inner.Err()
}
