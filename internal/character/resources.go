package character

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/arthub/internal/blobstore"
	"github.com/dmitrijs2005/arthub/internal/docstore"
	"github.com/dmitrijs2005/arthub/internal/media"
	"github.com/dmitrijs2005/arthub/internal/resource"
)

// Load reads the character document through a read-once Resource.
func Load(ctx context.Context, docs docstore.Store, id string) *resource.Resource[Character] {
	return resource.New(func() (Character, error) {
		doc, err := docs.Collection(docstore.CollectionCharacters).Get(ctx, id)
		if err != nil {
			return Character{}, err
		}
		return fromDocument(id, doc)
	})
}

// Watch reads the character through a Resource fed by the store's change
// feed. Only the first emission settles the Resource; the returned stop
// function ends the underlying subscription if it is still active.
// Callers needing live updates subscribe again separately.
func Watch(docs docstore.Store, id string) *resource.Resource[Character] {
	collection := docs.Collection(docstore.CollectionCharacters)
	return resource.FromSubscription(func(emit func(Character, error)) func() {
		return collection.Watch(id, func(doc docstore.Document, err error) {
			if err != nil {
				emit(Character{}, err)
				return
			}
			c, derr := fromDocument(id, doc)
			emit(c, derr)
		})
	})
}

// URLCache memoizes media download URLs by asset id for the lifetime of
// the process. Each id's URL is produced by exactly one Resource, shared
// by every reader.
type URLCache struct {
	mu        sync.Mutex
	resources map[string]*resource.Resource[string]
}

func NewURLCache() *URLCache {
	return &URLCache{resources: make(map[string]*resource.Resource[string])}
}

// ImageURL returns the memoized Resource producing the download URL for
// the owner's asset. The first caller for an id starts the production;
// later callers share its result.
func (c *URLCache) ImageURL(blobs blobstore.Store, ownerID, assetID string) *resource.Resource[string] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.resources[assetID]; ok {
		return r
	}
	r := resource.New(func() (string, error) {
		return blobs.DownloadURL(context.Background(), blobstore.AssetPath(ownerID, assetID))
	})
	c.resources[assetID] = r
	return r
}

// MediaItems builds the pre-existing media set for a character: one item
// per referenced file id, each with its URL Resource, none scheduled for
// removal.
func MediaItems(cache *URLCache, blobs blobstore.Store, ch Character) []media.PreExisting {
	items := make([]media.PreExisting, len(ch.Files))
	for i, id := range ch.Files {
		items[i] = media.PreExisting{
			ID:  id,
			URL: cache.ImageURL(blobs, ch.Owner, id),
		}
	}
	return items
}
