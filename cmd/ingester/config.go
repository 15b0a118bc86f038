package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/trustlens/transfergraph/pkg/neo4j"
)

// Config holds all configuration for the ingester application
type Config struct {
	// Application settings
	Verbose bool

	// Blockchain settings
	RPCURL      string
	Contract    string
	Participant string

	// Pipeline settings
	SkipGas     bool
	RPCTimeout  time.Duration
	Interval    time.Duration
	Concurrency int

	// Graph store settings
	Neo4j neo4j.Config

	// Metrics settings
	MetricsHost string
	MetricsPort int
	Environment string
}

// MetricsAddr returns the formatted metrics address
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.MetricsHost, c.MetricsPort)
}

// buildConfig builds a Config from CLI context flags. Neo4j settings start
// from the environment (neo4j.Load) and individual flags override them.
func buildConfig(c *cli.Context) (*Config, error) {
	concurrency := c.Int("concurrency")
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	return &Config{
		Verbose:     c.Bool("verbose"),
		RPCURL:      c.String("rpc-url"),
		Contract:    c.String("contract-address"),
		Participant: c.String("participant-address"),
		SkipGas:     c.Bool("skip-gas"),
		RPCTimeout:  c.Duration("rpc-timeout"),
		Interval:    c.Duration("interval"),
		Concurrency: concurrency,
		Neo4j:       buildNeo4jConfig(c),
		MetricsHost: c.String("metrics-host"),
		MetricsPort: c.Int("metrics-port"),
		Environment: c.String("environment"),
	}, nil
}

func buildNeo4jConfig(c *cli.Context) neo4j.Config {
	cfg := neo4j.Load()

	if c.IsSet("neo4j-uri") {
		cfg.URI = c.String("neo4j-uri")
	}
	if c.IsSet("neo4j-username") {
		cfg.Username = c.String("neo4j-username")
	}
	if c.IsSet("neo4j-password") {
		cfg.Password = c.String("neo4j-password")
	}
	if c.IsSet("neo4j-realm") {
		cfg.Realm = c.String("neo4j-realm")
	}
	if c.IsSet("neo4j-database") {
		cfg.Database = c.String("neo4j-database")
	}
	if c.IsSet("neo4j-max-conn-pool-size") {
		cfg.MaxConnectionPoolSize = c.Int("neo4j-max-conn-pool-size")
	}
	if c.IsSet("neo4j-connection-timeout") {
		cfg.ConnectionTimeout = c.Int("neo4j-connection-timeout")
	}
	return cfg
}
