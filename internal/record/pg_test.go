package record

import (
	"errors"
	"testing"

	dom "taskflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	n, err := parseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	for _, bad := range []string{"", "abc", "0", "-3", "5f0c2a"} {
		_, err := parseID(bad)
		assert.ErrorIs(t, err, dom.ErrNotFound, bad)
	}
}

func TestStripBackendFields(t *testing.T) {
	in := Record{
		FieldID:         "7",
		"id":            "7",
		FieldOwner:      int64(1),
		FieldCreatedOn:  "x",
		FieldModifiedOn: "y",
		"title":         "keep",
	}
	out := stripBackendFields(in)
	assert.Equal(t, Record{"title": "keep"}, out)
	assert.Len(t, in, 6)
}

func TestRemoteErr(t *testing.T) {
	cause := errors.New("connection refused")
	err := remoteErr("fetch", cause)
	assert.ErrorIs(t, err, dom.ErrRemote)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "record fetch")
}
