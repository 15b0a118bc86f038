package neo4j

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

// Config holds the configuration for a Neo4j client.
type Config struct {
	URI                   string `env:"NEO4J_URI" envDefault:"bolt://localhost:7687"`
	Username              string `env:"NEO4J_USERNAME" envDefault:""`
	Password              string `env:"NEO4J_PASSWORD" envDefault:""`
	Realm                 string `env:"NEO4J_REALM" envDefault:""`
	Database              string `env:"NEO4J_DATABASE" envDefault:""` // empty selects the server default
	MaxConnectionPoolSize int    `env:"NEO4J_MAX_CONN_POOL_SIZE" envDefault:"10"`
	ConnectionTimeout     int    `env:"NEO4J_CONNECTION_TIMEOUT" envDefault:"30"` // seconds
}

// Load loads Neo4j configuration from environment variables.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		// Create a temporary logger for error reporting during config loading
		logger, logErr := zap.NewProduction()
		if logErr == nil {
			logger.Sugar().Errorw("failed to parse neo4j config", "error", err)
		} else {
			fmt.Fprintf(os.Stderr, "failed to parse neo4j config: %v\n", err)
		}
		os.Exit(1)
	}
	return cfg
}
