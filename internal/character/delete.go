package character

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/arthub/internal/blobstore"
	"github.com/dmitrijs2005/arthub/internal/docstore"
	"github.com/dmitrijs2005/arthub/internal/logging"
)

// Delete removes a character and its media. Every asset is deleted
// best-effort in parallel; failures are logged only and never block the
// document delete. A leaked asset is storage waste, not corruption; the
// document delete is what makes the character gone, so its error is the
// one returned.
func Delete(ctx context.Context, docs docstore.Store, blobs blobstore.Store, log logging.Logger, ch Character) error {
	var wg sync.WaitGroup
	for _, fileID := range ch.Files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := blobstore.AssetPath(ch.Owner, fileID)
			if err := blobs.Delete(ctx, path); err != nil {
				log.Warn(ctx, "media delete failed", "path", path, "err", err)
			}
		}()
	}
	wg.Wait()

	return docs.Collection(docstore.CollectionCharacters).Delete(ctx, ch.ID)
}
