package iocache

import (
	"testing"
	"time"

	"github.com/Astrarre/FebbGradle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, validateTableName("febb_manifest_records"))
	assert.NoError(t, validateTableName("_t1"))
	assert.Error(t, validateTableName(""))
	assert.Error(t, validateTableName("1table"))
	assert.Error(t, validateTableName("t; DROP TABLE x"))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))
}

func TestPlaceholderList(t *testing.T) {
	assert.Equal(t, "$1, $2, $3", placeholderList(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "?, ?", placeholderList(schema.MySQLBackend, 2))
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 1))
}

func TestScanTime(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 123456000, time.UTC)

	got, err := scanTime(formatTime(ts, schema.SQLiteBackend), schema.SQLiteBackend)
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	got, err = scanTime([]byte("2024-05-06 07:08:09.123456"), schema.MySQLBackend)
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	got, err = scanTime(ts, schema.PostgreSQLBackend)
	require.NoError(t, err)
	assert.Equal(t, ts, got)

	_, err = scanTime(42, schema.SQLiteBackend)
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("{}"))
	assert.Equal(t, a, Digest([]byte("{}")))
	assert.NotEqual(t, a, Digest([]byte("{ }")))
	assert.Len(t, a, len("blake3:")+64)
}

func TestDriverFor(t *testing.T) {
	name, err := driverFor(schema.PostgreSQLBackend)
	require.NoError(t, err)
	assert.Equal(t, "pgx", name)
	_, err = driverFor(schema.FileBackend)
	assert.Error(t, err)
}
