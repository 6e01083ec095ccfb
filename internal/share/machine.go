package share

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/arthub/internal/clipboard"
	"github.com/dmitrijs2005/arthub/internal/docstore"
	"github.com/dmitrijs2005/arthub/internal/logging"
)

// Region is the top-level screen the machine is on. Regions are mutually
// exclusive.
type Region int

const (
	ViewingCharacters Region = iota
	SharingCharacters
	ViewingShares
)

// SharingState is the sub-state of the SharingCharacters region.
type SharingState int

const (
	SharingIdle SharingState = iota
	// Confirming waits for the user to supply an alias for the link.
	Confirming
	// Sharing is entered while the share record is being created.
	Sharing
	// ShowingURL presents the built URL; reachable only after a record
	// was created.
	ShowingURL
	ShareFailed
)

// CopyState is the outcome of the latest clipboard attempt. Clipboard
// failures never escalate to the parent state.
type CopyState int

const (
	CopyIdle CopyState = iota
	Copied
	NotCopied
)

// RevokeState is the outcome of the latest bulk revocation.
type RevokeState int

const (
	RevokeIdle RevokeState = iota
	Revoked
	NotRevoked
)

// Machine coordinates share-link creation, clipboard copy and bulk
// revocation. All event methods are synchronous; external calls happen
// inline and their outcome decides the next state. Not safe for
// concurrent use.
type Machine struct {
	docs    docstore.Store
	clip    clipboard.Writer
	log     logging.Logger
	baseURL string
	ownerID string

	region  Region
	sharing SharingState

	characterID string
	alias       string
	url         string
	shareErr    error

	urlCopy  CopyState
	listCopy CopyState
	revoke   RevokeState
}

func NewMachine(docs docstore.Store, clip clipboard.Writer, log logging.Logger, baseURL, ownerID string) *Machine {
	return &Machine{
		docs:    docs,
		clip:    clip,
		log:     log,
		baseURL: baseURL,
		ownerID: ownerID,
	}
}

func (m *Machine) Region() Region { return m.region }

func (m *Machine) SharingState() SharingState { return m.sharing }

// URL returns the shareable URL built by the last successful share.
func (m *Machine) URL() string { return m.url }

// Err returns the failure behind ShareFailed.
func (m *Machine) Err() error { return m.shareErr }

// CopyState returns the outcome of the ShowingURL copy sub-flow.
func (m *Machine) CopyState() CopyState { return m.urlCopy }

// ListCopyState returns the outcome of the per-link copy in ViewingShares.
func (m *Machine) ListCopyState() CopyState { return m.listCopy }

func (m *Machine) RevokeState() RevokeState { return m.revoke }

// ViewCharacters switches to the character browser.
func (m *Machine) ViewCharacters() {
	m.region = ViewingCharacters
}

// ViewShares switches to the existing-share list, resetting its
// sub-flows.
func (m *Machine) ViewShares() {
	m.region = ViewingShares
	m.revoke = RevokeIdle
	m.listCopy = CopyIdle
}

// ShareCharacter starts sharing the given character: the machine moves
// to the SharingCharacters region and waits for the alias confirmation.
// Ignored while a share is mid-flight.
func (m *Machine) ShareCharacter(characterID string) {
	if m.sharing == Sharing {
		return
	}
	m.region = SharingCharacters
	m.sharing = Confirming
	m.characterID = characterID
	m.alias = ""
	m.url = ""
	m.shareErr = nil
	m.urlCopy = CopyIdle
}

// Confirm supplies the alias and performs the share: it creates one
// share record under a store-generated id, then builds the shareable URL
// from that id. Valid only in Confirming.
func (m *Machine) Confirm(ctx context.Context, alias string) {
	if m.sharing != Confirming {
		return
	}
	m.alias = alias
	m.sharing = Sharing

	id, err := m.docs.Collection(docstore.CollectionShares).Add(ctx, toDocument(Link{
		Alias:       alias,
		OwnerID:     m.ownerID,
		CharacterID: m.characterID,
	}))
	if err != nil {
		m.shareErr = fmt.Errorf("creating share record: %w", err)
		m.sharing = ShareFailed
		m.log.Warn(ctx, "share failed", "characterID", m.characterID, "err", err)
		return
	}

	m.url = URL(m.baseURL, id)
	m.sharing = ShowingURL
}

// CopyURL copies the just-built share URL to the clipboard. Valid only
// in ShowingURL; a clipboard failure is recorded as NotCopied, never as
// a share failure.
func (m *Machine) CopyURL() {
	if m.sharing != ShowingURL {
		return
	}
	if err := m.clip.WriteText(m.url); err != nil {
		m.log.Warn(context.Background(), "clipboard write failed", "err", err)
		m.urlCopy = NotCopied
		return
	}
	m.urlCopy = Copied
}

// CopyShareURL copies an existing link's URL from the share list. The
// link id comes from the event, not from the sharing context.
func (m *Machine) CopyShareURL(shareID string) {
	if m.region != ViewingShares {
		return
	}
	if err := m.clip.WriteText(URL(m.baseURL, shareID)); err != nil {
		m.log.Warn(context.Background(), "clipboard write failed", "shareID", shareID, "err", err)
		m.listCopy = NotCopied
		return
	}
	m.listCopy = Copied
}

// RevokeShares deletes every listed share record in parallel; one
// deletion's failure does not stop the others. The aggregate outcome is
// Revoked only when the whole batch succeeded: a single failing deletion
// reports NotRevoked even though other deletions may have gone through,
// and nothing is rolled back.
// TODO: per-id outcomes would let the list refresh drop only the links
// actually deleted.
func (m *Machine) RevokeShares(ctx context.Context, ids ...string) {
	if m.region != ViewingShares {
		return
	}

	shares := m.docs.Collection(docstore.CollectionShares)
	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = shares.Delete(ctx, id)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			m.log.Warn(ctx, "share revoke failed", "shareID", ids[i], "err", err)
			m.revoke = NotRevoked
			return
		}
	}
	m.revoke = Revoked
}

// Dismiss closes the terminal sharing sub-state and returns to the
// character browser. Valid in ShowingURL and ShareFailed.
func (m *Machine) Dismiss() {
	if m.sharing != ShowingURL && m.sharing != ShareFailed {
		return
	}
	m.sharing = SharingIdle
	m.region = ViewingCharacters
	m.characterID = ""
	m.alias = ""
	m.url = ""
	m.shareErr = nil
	m.urlCopy = CopyIdle
}
