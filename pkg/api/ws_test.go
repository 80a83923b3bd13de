package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSocketSlotIsExclusive(t *testing.T) {
	entry := &sessionEntry{}

	require.True(t, entry.acquireSocket())
	assert.False(t, entry.acquireSocket(), "a second socket must be refused while the first is attached")

	entry.releaseSocket()
	assert.True(t, entry.acquireSocket(), "the slot frees up once the first socket detaches")
}
