package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationEnv(t *testing.T) {
	cases := map[string]time.Duration{
		"10":     10 * time.Second,
		"5m":     5 * time.Minute,
		`"10s"`:  10 * time.Second,
		" '2h' ": 2 * time.Hour,
	}
	for in, want := range cases {
		got, err := ParseDurationEnv(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", `""`, "ten"} {
		_, err := ParseDurationEnv(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseRedisURL(t *testing.T) {
	addr, pw, db, err := ParseRedisURL("rediss://default:pw@host:6380/3")
	require.NoError(t, err)
	assert.Equal(t, "host:6380", addr)
	assert.Equal(t, "pw", pw)
	assert.Equal(t, 3, db)

	_, _, _, err = ParseRedisURL("http://host:6379")
	assert.Error(t, err)
	_, _, _, err = ParseRedisURL("redis://host:6379/x")
	assert.Error(t, err)
}

func TestIsPGUniqueViolation(t *testing.T) {
	assert.True(t, IsPGUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsPGUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsPGUniqueViolation(fmt.Errorf("plain")))
}
