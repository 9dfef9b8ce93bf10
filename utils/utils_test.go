package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("spike-and-dig")
	require.NoError(t, err)

	assert.NotEqual(t, "spike-and-dig", hash)
	assert.True(t, CheckPasswordHash("spike-and-dig", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
