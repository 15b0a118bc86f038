package main

import (
	"time"

	"github.com/urfave/cli/v2"
)

// runFlags returns all CLI flags for the ingester run command
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: []string{"VERBOSE"},
			Value:   false,
		},
		&cli.StringFlag{
			Name:     "rpc-url",
			Aliases:  []string{"r"},
			Usage:    "The JSON-RPC URL to query the chain through",
			EnvVars:  []string{"RPC_URL"},
			Required: true,
		},
		&cli.StringFlag{
			Name:     "contract-address",
			Aliases:  []string{"C"},
			Usage:    "The contract whose Transfer event log is ingested",
			EnvVars:  []string{"CONTRACT_ADDRESS"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "participant-address",
			Aliases: []string{"p"},
			Usage:   "Restrict ingestion to transfers sent or received by this address (empty ingests everything)",
			EnvVars: []string{"PARTICIPANT_ADDRESS"},
		},
		&cli.BoolFlag{
			Name:    "skip-gas",
			Usage:   "Skip receipt lookups entirely; events persist without gas data",
			EnvVars: []string{"SKIP_GAS"},
			Value:   false,
		},
		&cli.DurationFlag{
			Name:    "rpc-timeout",
			Aliases: []string{"t"},
			Usage:   "The timeout applied to each chain round trip",
			EnvVars: []string{"RPC_TIMEOUT"},
			Value:   10 * time.Second,
		},
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Usage:   "Re-run the ingestion on this interval (0 runs once and exits)",
			EnvVars: []string{"INTERVAL"},
			Value:   0,
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Aliases: []string{"c"},
			Usage:   "The number of receipt lookups allowed in flight",
			EnvVars: []string{"CONCURRENCY"},
			Value:   8,
		},
		&cli.StringFlag{
			Name:    "metrics-host",
			Usage:   "Host for Prometheus metrics server (empty for all interfaces)",
			EnvVars: []string{"METRICS_HOST"},
			Value:   "",
		},
		&cli.IntFlag{
			Name:    "metrics-port",
			Aliases: []string{"m"},
			Usage:   "Port for Prometheus metrics server",
			EnvVars: []string{"METRICS_PORT"},
			Value:   9090,
		},
		&cli.StringFlag{
			Name:    "environment",
			Aliases: []string{"E"},
			Usage:   "Deployment environment for metrics labels (e.g., 'production', 'staging')",
			EnvVars: []string{"ENVIRONMENT"},
			Value:   "",
		},
		// Neo4j configuration flags
		&cli.StringFlag{
			Name:    "neo4j-uri",
			Usage:   "Neo4j bolt URI",
			EnvVars: []string{"NEO4J_URI"},
			Value:   "bolt://localhost:7687",
		},
		&cli.StringFlag{
			Name:    "neo4j-username",
			Usage:   "Neo4j username (empty connects without authentication)",
			EnvVars: []string{"NEO4J_USERNAME"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "neo4j-password",
			Usage:   "Neo4j password",
			EnvVars: []string{"NEO4J_PASSWORD"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "neo4j-realm",
			Usage:   "Neo4j authentication realm",
			EnvVars: []string{"NEO4J_REALM"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "neo4j-database",
			Usage:   "Neo4j database name (empty selects the server default)",
			EnvVars: []string{"NEO4J_DATABASE"},
			Value:   "",
		},
		&cli.IntFlag{
			Name:    "neo4j-max-conn-pool-size",
			Usage:   "Neo4j maximum connection pool size",
			EnvVars: []string{"NEO4J_MAX_CONN_POOL_SIZE"},
			Value:   10,
		},
		&cli.IntFlag{
			Name:    "neo4j-connection-timeout",
			Usage:   "Neo4j socket connect timeout in seconds",
			EnvVars: []string{"NEO4J_CONNECTION_TIMEOUT"},
			Value:   30,
		},
	}
}
