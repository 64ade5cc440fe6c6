package matchcrawl_test

import (
	"testing"

	"github.com/fwojciec/matchcrawl"
	"github.com/stretchr/testify/assert"
)

func TestFieldResult(t *testing.T) {
	t.Parallel()

	t.Run("Missing carries the sentinel", func(t *testing.T) {
		t.Parallel()
		r := matchcrawl.Missing()
		assert.Equal(t, matchcrawl.NotFound, r.Value)
		assert.Equal(t, -1, r.Strategy)
		assert.False(t, r.Found)
	})

	t.Run("Found records the winning strategy index", func(t *testing.T) {
		t.Parallel()
		r := matchcrawl.Found("Old Trafford", 2)
		assert.Equal(t, "Old Trafford", r.Value)
		assert.Equal(t, 2, r.Strategy)
		assert.True(t, r.Found)
	})
}

func TestStrategyKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "css", matchcrawl.StrategyCSS.String())
	assert.Equal(t, "pattern", matchcrawl.StrategyPattern.String())
	assert.Equal(t, "text", matchcrawl.StrategyText.String())
	assert.Equal(t, "unknown", matchcrawl.StrategyKind(99).String())
}
