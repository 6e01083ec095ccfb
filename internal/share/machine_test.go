package share

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/arthub/internal/clipboard"
	"github.com/dmitrijs2005/arthub/internal/common"
	"github.com/dmitrijs2005/arthub/internal/docstore"
	"github.com/dmitrijs2005/arthub/internal/logging"
)

const testBaseURL = "https://arthub.example/s"

// faultyDocs wraps a real store and fails selected share operations.
type faultyDocs struct {
	inner     docstore.Store
	addErr    error
	deleteErr map[string]error
}

func newFaultyDocs() *faultyDocs {
	return &faultyDocs{
		inner:     docstore.NewMemoryStore(),
		deleteErr: make(map[string]error),
	}
}

func (f *faultyDocs) Collection(name string) docstore.Collection {
	return &faultyCollection{Collection: f.inner.Collection(name), parent: f}
}

type faultyCollection struct {
	docstore.Collection
	parent *faultyDocs
}

func (c *faultyCollection) Add(ctx context.Context, doc docstore.Document) (string, error) {
	if err := c.parent.addErr; err != nil {
		return "", err
	}
	return c.Collection.Add(ctx, doc)
}

func (c *faultyCollection) Delete(ctx context.Context, id string) error {
	if err := c.parent.deleteErr[id]; err != nil {
		return err
	}
	return c.Collection.Delete(ctx, id)
}

func newTestMachine(docs docstore.Store, clip clipboard.Writer) *Machine {
	return NewMachine(docs, clip, logging.NewNopLogger(), testBaseURL, "user-1")
}

func TestMachine_ShareHappyPath(t *testing.T) {
	docs := docstore.NewMemoryStore()
	clip := &clipboard.Memory{}
	m := newTestMachine(docs, clip)

	m.ShareCharacter("char-1")
	assert.Equal(t, SharingCharacters, m.Region())
	assert.Equal(t, Confirming, m.SharingState())

	m.Confirm(context.Background(), "For Alice")
	require.Equal(t, ShowingURL, m.SharingState())

	// The URL embeds the id the store generated for the new record.
	snaps, err := docs.Collection(docstore.CollectionShares).Query(
		context.Background(), "roles.owner", "user-1")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, URL(testBaseURL, snaps[0].ID), m.URL())
	assert.True(t, strings.Contains(m.URL(), snaps[0].ID))

	link := fromSnapshot(snaps[0])
	assert.Equal(t, "For Alice", link.Alias)
	assert.Equal(t, "char-1", link.CharacterID)
	assert.Equal(t, "user-1", link.OwnerID)

	m.CopyURL()
	assert.Equal(t, Copied, m.CopyState())
	assert.Equal(t, m.URL(), clip.Text())

	m.Dismiss()
	assert.Equal(t, ViewingCharacters, m.Region())
	assert.Equal(t, SharingIdle, m.SharingState())
	assert.Empty(t, m.URL())
}

func TestMachine_ShareFailure(t *testing.T) {
	docs := newFaultyDocs()
	docs.addErr = errors.New("store down")
	clip := &clipboard.Memory{}
	m := newTestMachine(docs, clip)

	m.ShareCharacter("char-1")
	m.Confirm(context.Background(), "For Alice")
	assert.Equal(t, ShareFailed, m.SharingState())
	require.Error(t, m.Err())
	assert.Empty(t, m.URL())

	// The URL screen and its copy sub-flow stay unreachable.
	m.CopyURL()
	assert.Equal(t, CopyIdle, m.CopyState())
	assert.Empty(t, clip.Text())

	m.Dismiss()
	assert.Equal(t, SharingIdle, m.SharingState())
	assert.NoError(t, m.Err())
}

func TestMachine_ConfirmOnlyFromConfirming(t *testing.T) {
	docs := docstore.NewMemoryStore()
	m := newTestMachine(docs, &clipboard.Memory{})

	m.Confirm(context.Background(), "stray")
	assert.Equal(t, SharingIdle, m.SharingState())

	snaps, err := docs.Collection(docstore.CollectionShares).Query(
		context.Background(), "roles.owner", "user-1")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestMachine_CopyURLFailure(t *testing.T) {
	m := newTestMachine(docstore.NewMemoryStore(), &clipboard.Memory{Err: errors.New("no clipboard")})

	m.ShareCharacter("char-1")
	m.Confirm(context.Background(), "a")
	require.Equal(t, ShowingURL, m.SharingState())

	m.CopyURL()
	assert.Equal(t, NotCopied, m.CopyState())
	// The failure stays inside the copy sub-flow.
	assert.Equal(t, ShowingURL, m.SharingState())
}

func TestMachine_CopyShareURL(t *testing.T) {
	clip := &clipboard.Memory{}
	m := newTestMachine(docstore.NewMemoryStore(), clip)

	// Ignored outside the share list.
	m.CopyShareURL("s1")
	assert.Equal(t, CopyIdle, m.ListCopyState())

	m.ViewShares()
	m.CopyShareURL("s1")
	assert.Equal(t, Copied, m.ListCopyState())
	assert.Equal(t, URL(testBaseURL, "s1"), clip.Text())
}

func TestMachine_RevokeShares(t *testing.T) {
	docs := newFaultyDocs()
	shares := docs.Collection(docstore.CollectionShares)
	id1, err := shares.Add(context.Background(), toDocument(Link{Alias: "a", OwnerID: "user-1"}))
	require.NoError(t, err)
	id2, err := shares.Add(context.Background(), toDocument(Link{Alias: "b", OwnerID: "user-1"}))
	require.NoError(t, err)

	m := newTestMachine(docs, &clipboard.Memory{})
	m.ViewShares()
	m.RevokeShares(context.Background(), id1, id2)
	assert.Equal(t, Revoked, m.RevokeState())

	snaps, err := shares.Query(context.Background(), "roles.owner", "user-1")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestMachine_RevokeShares_PartialFailureReportsNotRevoked(t *testing.T) {
	docs := newFaultyDocs()
	shares := docs.Collection(docstore.CollectionShares)
	id1, err := shares.Add(context.Background(), toDocument(Link{Alias: "a", OwnerID: "user-1"}))
	require.NoError(t, err)
	id2, err := shares.Add(context.Background(), toDocument(Link{Alias: "b", OwnerID: "user-1"}))
	require.NoError(t, err)
	docs.deleteErr[id2] = errors.New("store down")

	m := newTestMachine(docs, &clipboard.Memory{})
	m.ViewShares()
	m.RevokeShares(context.Background(), id1, id2)

	// One failure makes the whole batch report NotRevoked, even though
	// the other record really was deleted.
	assert.Equal(t, NotRevoked, m.RevokeState())
	snaps, err := shares.Query(context.Background(), "roles.owner", "user-1")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, id2, snaps[0].ID)
}

func TestMachine_RevokeIgnoredOutsideShareList(t *testing.T) {
	docs := docstore.NewMemoryStore()
	shares := docs.Collection(docstore.CollectionShares)
	id, err := shares.Add(context.Background(), toDocument(Link{Alias: "a", OwnerID: "user-1"}))
	require.NoError(t, err)

	m := newTestMachine(docs, &clipboard.Memory{})
	m.RevokeShares(context.Background(), id)
	assert.Equal(t, RevokeIdle, m.RevokeState())

	snaps, err := shares.Query(context.Background(), "roles.owner", "user-1")
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestResolve(t *testing.T) {
	docs := docstore.NewMemoryStore()
	shares := docs.Collection(docstore.CollectionShares)
	id, err := shares.Add(context.Background(), toDocument(Link{Alias: "For Bob", OwnerID: "user-1", CharacterID: "c1"}))
	require.NoError(t, err)

	link, err := Resolve(context.Background(), docs, id)
	require.NoError(t, err)
	assert.Equal(t, Link{ID: id, Alias: "For Bob", OwnerID: "user-1", CharacterID: "c1"}, link)
}

func TestResolve_MissingShare(t *testing.T) {
	docs := docstore.NewMemoryStore()

	_, err := Resolve(context.Background(), docs, "no-such-share")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestOwnedBy(t *testing.T) {
	docs := docstore.NewMemoryStore()
	shares := docs.Collection(docstore.CollectionShares)
	_, err := shares.Add(context.Background(), toDocument(Link{Alias: "mine", OwnerID: "user-1", CharacterID: "c1"}))
	require.NoError(t, err)
	_, err = shares.Add(context.Background(), toDocument(Link{Alias: "theirs", OwnerID: "user-2", CharacterID: "c2"}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	links, err := OwnedBy(ctx, docs, "user-1").Await(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "mine", links[0].Alias)
	assert.Equal(t, "c1", links[0].CharacterID)
}
