// Package media provides the paged controller over a character's image
// set: the items already persisted for the character followed by the ones
// added in the current editing session.
//
// The two halves behave differently on removal. Pre-existing items are
// removed softly: they are marked scheduled-for-removal and resolved at
// save time. New items are removed hard: their bytes are discarded on the
// spot and never uploaded.
package media

import "github.com/dmitrijs2005/arthub/internal/resource"

// State identifies which part of the media set is active.
type State int

const (
	// Empty means there are no items at all.
	Empty State = iota
	// ViewingPreExisting means the current page indexes the pre-existing
	// items.
	ViewingPreExisting
	// ViewingNew means the current page indexes the newly added items.
	ViewingNew
	// AwaitingNewMedia is the "add more" page shown past the last item.
	AwaitingNewMedia
)

// PreExisting is an item already persisted and referenced by a character
// document. Its display URL resolves asynchronously.
type PreExisting struct {
	ID                  string
	URL                 *resource.Resource[string]
	ScheduledForRemoval bool
}

// NewItem is an item added in the current editing session: raw bytes plus
// a locally generated preview URL.
type NewItem struct {
	Data    []byte
	Preview string
}

// Controller is a finite-state controller over the two-part ordered media
// collection. It holds no I/O; all transitions are synchronous. The set
// is mutated only through controller events.
type Controller struct {
	state       State
	currentPage int
	preExisting []PreExisting
	added       []NewItem
}

// NewController computes the initial state: pre-existing items first if
// any, else new items, else Empty.
func NewController(preExisting []PreExisting, added []NewItem) *Controller {
	c := &Controller{
		preExisting: append([]PreExisting(nil), preExisting...),
		added:       append([]NewItem(nil), added...),
	}
	switch {
	case len(c.preExisting) > 0:
		c.state = ViewingPreExisting
	case len(c.added) > 0:
		c.state = ViewingNew
	default:
		c.state = Empty
	}
	return c
}

// State returns the active state.
func (c *Controller) State() State { return c.state }

// Page returns the current page within the active sub-collection.
func (c *Controller) Page() int { return c.currentPage }

// PreExisting returns a copy of the pre-existing items in display order.
func (c *Controller) PreExisting() []PreExisting {
	return append([]PreExisting(nil), c.preExisting...)
}

// Added returns a copy of the newly added items in display order.
func (c *Controller) Added() []NewItem {
	return append([]NewItem(nil), c.added...)
}

// Next advances one page. Guards are evaluated in order; the first match
// wins.
func (c *Controller) Next() {
	switch c.state {
	case ViewingPreExisting:
		switch {
		case c.currentPage >= len(c.preExisting)-1 && len(c.added) > 0:
			c.state = ViewingNew
			c.currentPage = 0
		case c.currentPage >= len(c.preExisting)-1:
			c.state = AwaitingNewMedia
		default:
			c.currentPage++
		}
	case ViewingNew:
		if c.currentPage >= len(c.added)-1 {
			c.state = AwaitingNewMedia
		} else {
			c.currentPage++
		}
	}
}

// Previous steps one page back, crossing from the new items into the
// pre-existing ones when needed.
func (c *Controller) Previous() {
	switch c.state {
	case ViewingPreExisting:
		if c.currentPage > 0 {
			c.currentPage--
		}
	case ViewingNew:
		switch {
		case c.currentPage > 0:
			c.currentPage--
		case len(c.preExisting) > 0:
			c.state = ViewingPreExisting
			c.currentPage = len(c.preExisting) - 1
		}
	case AwaitingNewMedia:
		switch {
		case len(c.added) > 0:
			c.state = ViewingNew
			c.currentPage = len(c.added) - 1
		case len(c.preExisting) > 0:
			c.state = ViewingPreExisting
			c.currentPage = len(c.preExisting) - 1
		}
		// Reaching AwaitingNewMedia with no items should be impossible;
		// stay put if it happens.
	}
}

// AddItems appends items to the new half and shows the last of them.
// Valid in Empty and AwaitingNewMedia.
func (c *Controller) AddItems(items ...NewItem) {
	if c.state != Empty && c.state != AwaitingNewMedia {
		return
	}
	if len(items) == 0 {
		return
	}
	c.added = append(c.added, items...)
	c.state = ViewingNew
	c.currentPage = len(c.added) - 1
}

// ScheduleRemoval marks the current pre-existing item for soft removal.
func (c *Controller) ScheduleRemoval() {
	if c.state != ViewingPreExisting {
		return
	}
	c.preExisting[c.currentPage].ScheduledForRemoval = true
}

// CancelRemoval clears the soft-removal mark on the current pre-existing
// item.
func (c *Controller) CancelRemoval() {
	if c.state != ViewingPreExisting {
		return
	}
	c.preExisting[c.currentPage].ScheduledForRemoval = false
}

// RemoveItem discards the current new item. Its bytes are dropped and
// will never be uploaded.
func (c *Controller) RemoveItem() {
	if c.state != ViewingNew {
		return
	}
	c.added = append(c.added[:c.currentPage], c.added[c.currentPage+1:]...)
	switch {
	case len(c.added) > 0:
		if c.currentPage > 0 {
			c.currentPage--
		}
	case len(c.preExisting) > 0:
		c.state = ViewingPreExisting
		c.currentPage = len(c.preExisting) - 1
	default:
		c.state = Empty
		c.currentPage = 0
	}
}

// KeptFileIDs returns the ids of pre-existing items not scheduled for
// removal, in display order. These survive an edit save.
func (c *Controller) KeptFileIDs() []string {
	var ids []string
	for _, item := range c.preExisting {
		if !item.ScheduledForRemoval {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// ScheduledFileIDs returns the ids of pre-existing items scheduled for
// removal, in display order.
func (c *Controller) ScheduledFileIDs() []string {
	var ids []string
	for _, item := range c.preExisting {
		if item.ScheduledForRemoval {
			ids = append(ids, item.ID)
		}
	}
	return ids
}
