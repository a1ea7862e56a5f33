package config

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alittlebrighter/bandstat"
)

func newTestProvider(t *testing.T) *SQLProvider {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	p, err := NewSQLProvider(DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	require.NoError(t, p.Setup(context.Background()))
	return p
}

func TestSQLProviderEmptyTable(t *testing.T) {
	p := newTestProvider(t)

	band, err := p.Band(context.Background())
	require.NoError(t, err)
	assert.Nil(t, band)
}

func TestSQLProviderStore(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Store(ctx, bandstat.Band{Min: -5, Max: 10}))
	band, err := p.Band(ctx)
	require.NoError(t, err)
	assert.Equal(t, &bandstat.Band{Min: -5, Max: 10}, band)

	require.NoError(t, p.Store(ctx, bandstat.Band{Min: 18.5, Max: 21}))
	band, err = p.Band(ctx)
	require.NoError(t, err)
	assert.Equal(t, &bandstat.Band{Min: 18.5, Max: 21}, band)

	var rows int
	require.NoError(t, p.DB.QueryRow(`SELECT COUNT(*) FROM Config`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSQLProviderReadError(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	p, err := NewSQLProvider(DriverSQLite, dsn)
	require.NoError(t, err)
	defer p.Close()

	// no Setup, so the table is missing
	band, err := p.Band(context.Background())
	assert.Error(t, err)
	assert.Nil(t, band)
}

func TestNewSQLProviderUnknownDriver(t *testing.T) {
	_, err := NewSQLProvider("postgres-not-registered", "whatever")
	assert.Error(t, err)
}
