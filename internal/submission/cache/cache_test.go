package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formview/internal/display"
	"formview/internal/processing/supplemental"
	"formview/internal/submission/models"
	"formview/internal/survey"
)

func sampleTree() *display.Group {
	content := survey.Content{Survey: []survey.Row{
		{Type: survey.TypeText, RawName: "q1", Labels: []string{"Name"}},
	}}
	return display.Build(content, supplemental.AdvancedFeatures{}, 0, models.Record{"q1": "Ana"})
}

func TestKeyString(t *testing.T) {
	k := Key{AssetUID: "aX", Version: "v2", SubmissionID: 17, Fingerprint: "9f3c", LanguageIndex: -1}
	assert.Equal(t, "display:aX:v2:17:9f3c:-1", k.String())
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	c := NewInMemory(time.Minute)
	c.now = func() time.Time { return now }
	key := Key{AssetUID: "aX", Version: "v1", SubmissionID: 1}

	t.Run("miss", func(t *testing.T) {
		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("hit returns equal tree", func(t *testing.T) {
		tree := sampleTree()
		require.NoError(t, c.Set(ctx, key, tree))
		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, tree, got)
	})

	t.Run("other language misses", func(t *testing.T) {
		other := key
		other.LanguageIndex = 1
		got, err := c.Get(ctx, other)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expired", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
