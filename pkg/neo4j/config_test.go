package neo4j

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "bolt://localhost:7687", cfg.URI)
	assert.Empty(t, cfg.Username)
	assert.Empty(t, cfg.Database)
	assert.Equal(t, 10, cfg.MaxConnectionPoolSize)
	assert.Equal(t, 30, cfg.ConnectionTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://graph.internal:7687")
	t.Setenv("NEO4J_USERNAME", "ingester")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("NEO4J_DATABASE", "transfers")
	t.Setenv("NEO4J_MAX_CONN_POOL_SIZE", "50")

	cfg := Load()

	assert.Equal(t, "neo4j://graph.internal:7687", cfg.URI)
	assert.Equal(t, "ingester", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "transfers", cfg.Database)
	assert.Equal(t, 50, cfg.MaxConnectionPoolSize)
}
