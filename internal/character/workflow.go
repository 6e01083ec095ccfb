package character

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/arthub/internal/blobstore"
	"github.com/dmitrijs2005/arthub/internal/common"
	"github.com/dmitrijs2005/arthub/internal/docstore"
	"github.com/dmitrijs2005/arthub/internal/logging"
	"github.com/dmitrijs2005/arthub/internal/media"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Phase of a save attempt.
type Phase int

const (
	// PhaseIdle means the workflow has not been started.
	PhaseIdle Phase = iota
	// PhaseUploadingFiles means new media is being uploaded to the blob
	// store.
	PhaseUploadingFiles
	// PhaseSaving means the character document is being persisted.
	PhaseSaving
	// PhaseRemovingScheduled (edit mode only) means soft-removed
	// pre-existing media is being deleted.
	PhaseRemovingScheduled
	// PhaseSucceeded and PhaseFailed are terminal for the attempt.
	PhaseSucceeded
	PhaseFailed
)

// Mode selects between creating a new character document and editing an
// existing one.
type Mode int

const (
	ModeNew Mode = iota
	ModeEdit
)

// ErrAttemptFinished is returned when Save is called on a workflow that
// already ran. A workflow covers exactly one attempt; construct a new one
// to retry.
var ErrAttemptFinished = errors.New("save attempt already ran")

// Command carries everything one save attempt needs.
type Command struct {
	Name        string
	Story       string
	Owner       string
	PreExisting []media.PreExisting
	NewMedia    []media.NewItem
}

// CommandFromController builds a Command from the media controller's
// current item sets.
func CommandFromController(name, story, owner string, c *media.Controller) Command {
	return Command{
		Name:        name,
		Story:       story,
		Owner:       owner,
		PreExisting: c.PreExisting(),
		NewMedia:    c.Added(),
	}
}

// Workflow runs one save attempt: upload new media, persist or update the
// character document, then (edit mode) delete soft-removed media. Any
// failure triggers best-effort compensating deletes of the assets
// uploaded by this attempt, so the document never references an asset
// whose upload did not complete.
type Workflow struct {
	mode        Mode
	characterID string

	docs  docstore.Store
	blobs blobstore.Store
	log   logging.Logger

	// newID generates asset ids; a test seam.
	newID func() string

	// OnTransition, when set, observes each phase entry.
	OnTransition func(Phase)

	phase        Phase
	generatedIDs []string
	err          error

	compensations sync.WaitGroup
}

// NewSave returns a workflow that creates a new character. The character
// id is generated once at construction and is stable for the whole
// attempt.
func NewSave(docs docstore.Store, blobs blobstore.Store, log logging.Logger) *Workflow {
	return &Workflow{
		mode:        ModeNew,
		characterID: uuid.NewString(),
		docs:        docs,
		blobs:       blobs,
		log:         log,
		newID:       uuid.NewString,
	}
}

// NewEdit returns a workflow that updates the existing character with the
// given id.
func NewEdit(characterID string, docs docstore.Store, blobs blobstore.Store, log logging.Logger) *Workflow {
	w := NewSave(docs, blobs, log)
	w.mode = ModeEdit
	w.characterID = characterID
	return w
}

// Phase returns the current phase.
func (w *Workflow) Phase() Phase { return w.phase }

// Err returns the failure that ended the attempt, if any.
func (w *Workflow) Err() error { return w.err }

// CharacterID returns the id the attempt persists under.
func (w *Workflow) CharacterID() string { return w.characterID }

// GeneratedAssetIDs returns the asset ids generated for this attempt's
// new media, in upload order.
func (w *Workflow) GeneratedAssetIDs() []string {
	return append([]string(nil), w.generatedIDs...)
}

// Save executes the attempt. Phases run strictly in order; no phase
// begins before the previous one's side effects have settled. The
// returned error is also retained for inspection via Err.
func (w *Workflow) Save(ctx context.Context, cmd Command) error {
	if w.phase != PhaseIdle {
		return ErrAttemptFinished
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return w.fail(common.ErrNameRequired)
	}

	if err := w.uploadFiles(ctx, cmd); err != nil {
		w.compensate(cmd.Owner)
		return w.fail(fmt.Errorf("uploading media: %w", err))
	}

	if err := w.persist(ctx, cmd); err != nil {
		w.compensate(cmd.Owner)
		return w.fail(fmt.Errorf("persisting character: %w", err))
	}

	if w.mode == ModeEdit {
		w.removeScheduled(ctx, cmd)
	}

	w.transition(PhaseSucceeded)
	return nil
}

// uploadFiles generates one fresh asset id per new item and uploads all
// of them concurrently. On any failure every already-started upload's
// outcome is disregarded.
func (w *Workflow) uploadFiles(ctx context.Context, cmd Command) error {
	w.transition(PhaseUploadingFiles)

	ids := make([]string, len(cmd.NewMedia))
	for i := range ids {
		ids[i] = w.newID()
	}
	w.generatedIDs = ids

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range cmd.NewMedia {
		g.Go(func() error {
			return w.blobs.Put(gctx, blobstore.AssetPath(cmd.Owner, ids[i]), item.Data)
		})
	}
	return g.Wait()
}

func (w *Workflow) persist(ctx context.Context, cmd Command) error {
	w.transition(PhaseSaving)
	characters := w.docs.Collection(docstore.CollectionCharacters)

	if w.mode == ModeNew {
		return characters.Set(ctx, w.characterID, toDocument(Character{
			ID:    w.characterID,
			Name:  cmd.Name,
			Story: cmd.Story,
			Files: w.generatedIDs,
			Owner: cmd.Owner,
		}))
	}

	// Edit: the final file list is the kept pre-existing ids followed by
	// the freshly uploaded ones. Ids scheduled for removal never make it
	// into the document.
	files := make([]string, 0, len(cmd.PreExisting)+len(w.generatedIDs))
	for _, item := range cmd.PreExisting {
		if !item.ScheduledForRemoval {
			files = append(files, item.ID)
		}
	}
	files = append(files, w.generatedIDs...)

	return characters.Update(ctx, w.characterID, docstore.Document{
		"files": files,
		"name":  cmd.Name,
		"story": cmd.Story,
	})
}

// removeScheduled deletes every soft-removed pre-existing asset in
// parallel. The phase completes once all deletions have been attempted;
// individual failures are logged only. The document already excludes
// these ids, so a failed delete is storage leakage, not corruption.
func (w *Workflow) removeScheduled(ctx context.Context, cmd Command) {
	w.transition(PhaseRemovingScheduled)

	var wg sync.WaitGroup
	for _, item := range cmd.PreExisting {
		if !item.ScheduledForRemoval {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := blobstore.AssetPath(cmd.Owner, item.ID)
			if err := w.blobs.Delete(ctx, path); err != nil {
				w.log.Warn(ctx, "scheduled media delete failed", "path", path, "err", err)
			}
		}()
	}
	wg.Wait()
}

// compensate issues a best-effort delete for every asset id generated by
// this attempt, including ids whose upload never started. Outcomes are
// discarded and failures logged; the deletes run in the background and
// never delay the transition to the failed phase. Wait drains them.
func (w *Workflow) compensate(owner string) {
	for _, id := range w.generatedIDs {
		w.compensations.Add(1)
		go func() {
			defer w.compensations.Done()
			path := blobstore.AssetPath(owner, id)
			if err := w.blobs.Delete(context.Background(), path); err != nil {
				w.log.Warn(context.Background(), "compensating delete failed", "path", path, "err", err)
			}
		}()
	}
}

// Wait blocks until all in-flight compensating deletes have been
// attempted. Callers that care about cleanup completion (tests, shutdown
// paths) use it; the workflow itself never does.
func (w *Workflow) Wait() {
	w.compensations.Wait()
}

func (w *Workflow) fail(err error) error {
	w.err = err
	w.transition(PhaseFailed)
	return err
}

func (w *Workflow) transition(p Phase) {
	w.phase = p
	if w.OnTransition != nil {
		w.OnTransition(p)
	}
}
