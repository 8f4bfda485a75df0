package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "formview/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, audit.Event{Action: audit.EventSubmissionDisplayed, AssetUID: "a1"}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: audit.EventPreviewBuilt}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: audit.EventSubmissionsDisplayed, AssetUID: "a1"}))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, audit.EventPreviewBuilt, all[1].Action)

	byAsset, err := store.ListByAsset(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, byAsset, 2)

	store.Clear()
	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
