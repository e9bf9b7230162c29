// internal/models/common_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBScanBytes(t *testing.T) {
	var j JSONB
	require.NoError(t, j.Scan([]byte(`{"count":2,"label":"x"}`)))
	assert.Equal(t, float64(2), j["count"])
	assert.Equal(t, "x", j["label"])
}

func TestJSONBScanString(t *testing.T) {
	var j JSONB
	require.NoError(t, j.Scan(`{"label":"y"}`))
	assert.Equal(t, "y", j["label"])
}

func TestJSONBScanNil(t *testing.T) {
	j := JSONB{"stale": true}
	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)
}

func TestJSONBScanUnsupportedType(t *testing.T) {
	var j JSONB
	err := j.Scan(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSONB")
	assert.Empty(t, j)
}
