package explorer

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestBackfillStart(t *testing.T) {
	assert.Equal(t, backfillStart(100, 10), uint(90))
	assert.Equal(t, backfillStart(11, 10), uint(1))

	// A short chain backfills from genesis.
	assert.Equal(t, backfillStart(10, 10), uint(1))
	assert.Equal(t, backfillStart(5, 10), uint(1))
	assert.Equal(t, backfillStart(0, 10), uint(1))

	// No backfill window means starting at the tip.
	assert.Equal(t, backfillStart(100, 0), uint(100))
}
