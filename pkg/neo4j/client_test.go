package neo4j

import (
	"context"
	"errors"
	"net/url"
	"testing"

	neo4jdrv "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDriver satisfies neo4jdrv.DriverWithContext so client methods can be
// exercised without a bolt connection.
type stubDriver struct {
	verifyErr error
	closeErr  error

	verifyCalls int
	closed      bool
	sessionCfg  neo4jdrv.SessionConfig
}

func (d *stubDriver) ExecuteQueryBookmarkManager() neo4jdrv.BookmarkManager { return nil }

func (d *stubDriver) Target() url.URL { return url.URL{} }

func (d *stubDriver) NewSession(ctx context.Context, cfg neo4jdrv.SessionConfig) neo4jdrv.SessionWithContext {
	d.sessionCfg = cfg
	return nil
}

func (d *stubDriver) VerifyConnectivity(ctx context.Context) error {
	d.verifyCalls++
	return d.verifyErr
}

func (d *stubDriver) VerifyAuthentication(ctx context.Context, auth *neo4jdrv.AuthToken) error {
	return nil
}

func (d *stubDriver) Close(ctx context.Context) error {
	d.closed = true
	return d.closeErr
}

func (d *stubDriver) IsEncrypted() bool { return false }

func (d *stubDriver) GetServerInfo(ctx context.Context) (neo4jdrv.ServerInfo, error) {
	return nil, nil
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()
	driver := &stubDriver{}
	c := &client{driver: driver}

	require.NoError(t, c.Ping(t.Context()))
	assert.Equal(t, 1, driver.verifyCalls)

	driver.verifyErr = errors.New("connection refused")
	require.Error(t, c.Ping(t.Context()))
}

func TestClient_Close(t *testing.T) {
	t.Parallel()
	driver := &stubDriver{}
	c := &client{driver: driver}

	require.NoError(t, c.Close(t.Context()))
	assert.True(t, driver.closed)
}

func TestClient_SessionUsesConfiguredDatabase(t *testing.T) {
	t.Parallel()
	driver := &stubDriver{}
	c := &client{driver: driver, database: "transfers"}

	s := c.Session(t.Context())
	require.NotNil(t, s)
	assert.Equal(t, neo4jdrv.AccessModeWrite, driver.sessionCfg.AccessMode)
	assert.Equal(t, "transfers", driver.sessionCfg.DatabaseName)
}
