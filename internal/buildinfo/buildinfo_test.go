package buildinfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampIsRFC3339(t *testing.T) {
	ts, err := time.Parse(time.RFC3339, Timestamp())
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())
}
