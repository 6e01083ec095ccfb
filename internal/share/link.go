// Package share implements share-link creation, clipboard copy and bulk
// revocation for characters. Links are standalone records keyed by a
// store-generated id; once created they are only ever deleted, never
// changed.
package share

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/arthub/internal/docstore"
	"github.com/dmitrijs2005/arthub/internal/resource"
)

// Link is a persisted share record.
type Link struct {
	ID          string
	Alias       string
	OwnerID     string
	CharacterID string
}

func toDocument(l Link) docstore.Document {
	return docstore.Document{
		"alias":       l.Alias,
		"characterId": l.CharacterID,
		"roles":       map[string]any{"owner": l.OwnerID},
	}
}

func fromSnapshot(s docstore.Snapshot) Link {
	l := Link{ID: s.ID}
	if v, ok := s.Doc["alias"].(string); ok {
		l.Alias = v
	}
	if v, ok := s.Doc["characterId"].(string); ok {
		l.CharacterID = v
	}
	if roles, ok := s.Doc["roles"].(map[string]any); ok {
		if owner, ok := roles["owner"].(string); ok {
			l.OwnerID = owner
		}
	}
	return l
}

// URL builds the shareable URL for a link id.
func URL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/" + id
}

// Resolve loads the share record behind a link id, for whoever holds
// the link. A missing record yields common.ErrorNotFound.
func Resolve(ctx context.Context, docs docstore.Store, shareID string) (Link, error) {
	doc, err := docs.Collection(docstore.CollectionShares).Get(ctx, shareID)
	if err != nil {
		return Link{}, err
	}
	return fromSnapshot(docstore.Snapshot{ID: shareID, Doc: doc}), nil
}

// OwnedBy reads the owner's share links through a read-once Resource.
func OwnedBy(ctx context.Context, docs docstore.Store, ownerID string) *resource.Resource[[]Link] {
	return resource.New(func() ([]Link, error) {
		snaps, err := docs.Collection(docstore.CollectionShares).Query(ctx, "roles.owner", ownerID)
		if err != nil {
			return nil, err
		}
		links := make([]Link, len(snaps))
		for i, s := range snaps {
			links[i] = fromSnapshot(s)
		}
		return links, nil
	})
}
