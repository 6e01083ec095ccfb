package character

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/arthub/internal/common"
	"github.com/dmitrijs2005/arthub/internal/docstore"
	"github.com/dmitrijs2005/arthub/internal/logging"
)

func seedCharacter(t *testing.T, docs docstore.Store, ch Character) {
	t.Helper()
	err := docs.Collection(docstore.CollectionCharacters).Set(context.Background(), ch.ID, toDocument(ch))
	require.NoError(t, err)
}

func TestDelete_RemovesAssetsThenDocument(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	blobs := newStubBlobs()

	ch := Character{ID: "char-1", Name: "Kira", Files: []string{"f1", "f2"}, Owner: "user-1"}
	seedCharacter(t, docs, ch)

	require.NoError(t, Delete(ctx, docs, blobs, logging.NewNopLogger(), ch))

	assert.Equal(t, []string{"user-1/f1", "user-1/f2"}, blobs.deleted())

	_, err := docs.Collection(docstore.CollectionCharacters).Get(ctx, "char-1")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestDelete_AssetFailureStillDeletesDocument(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	blobs := newStubBlobs()
	blobs.deleteErr["user-1/f1"] = errors.New("denied")

	ch := Character{ID: "char-1", Name: "Kira", Files: []string{"f1", "f2"}, Owner: "user-1"}
	seedCharacter(t, docs, ch)

	require.NoError(t, Delete(ctx, docs, blobs, logging.NewNopLogger(), ch))

	// Both deletes were attempted and the document is gone despite the
	// failed one.
	assert.Equal(t, []string{"user-1/f1", "user-1/f2"}, blobs.deleted())
	_, err := docs.Collection(docstore.CollectionCharacters).Get(ctx, "char-1")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestDelete_NoMedia(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	blobs := newStubBlobs()

	ch := Character{ID: "char-2", Name: "Rin", Owner: "user-1"}
	seedCharacter(t, docs, ch)

	require.NoError(t, Delete(ctx, docs, blobs, logging.NewNopLogger(), ch))
	assert.Empty(t, blobs.deleted())
}
