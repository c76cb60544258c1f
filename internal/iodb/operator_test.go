package iodb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/clindict/omopstat/internal/iodb"
	"github.com/clindict/omopstat/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "omop.sqlite"),
	}

	op := iodb.New()
	err := op.Connect(context.Background(), &cfg)
	require.NoError(t, err)
	defer op.Close()

	assert.Equal(t, "sqlite", op.Driver())
	require.NotNil(t, op.DB())
}

func TestConnectBadDriver(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "oracle"}

	op := iodb.New()
	err := op.Connect(context.Background(), &cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestTableExists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "omop.sqlite"),
	}

	op := iodb.New()
	require.NoError(t, op.Connect(ctx, &cfg))
	defer op.Close()

	_, err := op.DB().ExecContext(ctx, `
		CREATE TABLE measurement (
			measurement_concept_id BIGINT,
			person_id BIGINT
		)
	`)
	require.NoError(t, err)

	exists, err := op.TableExists(ctx, "measurement")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = op.TableExists(ctx, "observation")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTableExistsNotConnected(t *testing.T) {
	op := iodb.New()
	_, err := op.TableExists(context.Background(), "measurement")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "omop.sqlite"),
	}
	op := iodb.New()
	require.NoError(t, op.Connect(context.Background(), &cfg))
	defer op.Close()

	// Non-postgres backends keep '?' placeholders untouched.
	q := "SELECT * FROM measurement WHERE id = ? AND person_id = ?"
	assert.Equal(t, q, op.Rebind(q))
}

func TestClose(t *testing.T) {
	op := iodb.New()
	assert.NoError(t, op.Close(), "closing an unconnected operator is a no-op")
}
