package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWithoutURL(t *testing.T) {
	db, err := Open(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, db)
}

func TestSchemaDeclaresTables(t *testing.T) {
	assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS assets")
	assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS submissions")
	assert.Contains(t, Schema, "PRIMARY KEY (asset_uid, id)")
}
