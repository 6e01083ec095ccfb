package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/arthub/internal/character"
	"github.com/dmitrijs2005/arthub/internal/common"
	"github.com/dmitrijs2005/arthub/internal/docstore"
	"github.com/dmitrijs2005/arthub/internal/filex"
	"github.com/dmitrijs2005/arthub/internal/media"
	"github.com/dmitrijs2005/arthub/internal/netx"
)

var errNotLoggedIn = errors.New("log in first")

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		printlnFn(errNotLoggedIn.Error())
		return errNotLoggedIn
	}
	return nil
}

// List prints the logged-in user's characters.
func (a *App) List(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	snaps, err := a.docs.Collection(docstore.CollectionCharacters).Query(ctx, "roles.owner", a.userID)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if len(snaps) == 0 {
		printlnFn("No characters yet. Use 'new' to create one.")
		return nil
	}
	for _, s := range snaps {
		name, _ := s.Doc["name"].(string)
		var count int
		switch files := s.Doc["files"].(type) {
		case []string:
			count = len(files)
		case []any:
			count = len(files)
		}
		printlnFn(fmt.Sprintf("%s  %s (%d media)", s.ID, name, count))
	}
	return nil
}

// readNewMedia prompts for file paths until an empty line and loads each
// file's bytes as a new media item.
func (a *App) readNewMedia() ([]media.NewItem, error) {
	var items []media.NewItem
	for {
		path, err := getSimpleText(a.reader, "Media file path (empty line to finish)", os.Stdout)
		if err != nil {
			return nil, err
		}
		if path == "" {
			return items, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			printlnFn(err.Error())
			continue
		}
		items = append(items, media.NewItem{Data: data, Preview: path})
	}
}

// NewCharacter creates a character: prompts for a name, a story and
// media files, then runs the save workflow.
func (a *App) NewCharacter(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Character name", os.Stdout)
	if err != nil {
		return err
	}
	story, err := getMultiline(a.reader, "Story", os.Stdout)
	if err != nil {
		return err
	}

	ctrl := media.NewController(nil, nil)
	items, err := a.readNewMedia()
	if err != nil {
		return err
	}
	ctrl.AddItems(items...)

	w := character.NewSave(a.docs, a.blobs, a.log)
	a.drafts.SaveDraft(w.CharacterID(), story)

	if err := w.Save(ctx, character.CommandFromController(name, story, a.userID, ctrl)); err != nil {
		printlnFn(fmt.Sprintf("Save failed: %s", err.Error()))
		return err
	}

	a.drafts.ClearDraft(w.CharacterID())
	printlnFn(fmt.Sprintf("Saved character %s", w.CharacterID()))
	return nil
}

// EditCharacter updates an existing character: new name/story (empty
// keeps the current value), ids to remove, additional media files.
func (a *App) EditCharacter(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := getSimpleText(a.reader, "Character id", os.Stdout)
	if err != nil {
		return err
	}

	current, err := character.Load(ctx, a.docs, id).Await(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			printlnFn("No such character")
		} else {
			printlnFn(err.Error())
		}
		return err
	}

	name, err := getSimpleText(a.reader, fmt.Sprintf("Name [%s]", current.Name), os.Stdout)
	if err != nil {
		return err
	}
	if name == "" {
		name = current.Name
	}
	story, err := getMultiline(a.reader, "Story (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	if story == "" {
		story = current.Story
	}

	printlnFn("Current media: " + strings.Join(current.Files, " "))
	removeLine, err := getSimpleText(a.reader, "Ids to remove (space separated, empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	remove := make(map[string]bool)
	for _, rid := range strings.Fields(removeLine) {
		remove[rid] = true
	}

	preExisting := character.MediaItems(a.urlCache, a.blobs, current)
	for i := range preExisting {
		if remove[preExisting[i].ID] {
			preExisting[i].ScheduledForRemoval = true
		}
	}

	newItems, err := a.readNewMedia()
	if err != nil {
		return err
	}

	w := character.NewEdit(id, a.docs, a.blobs, a.log)
	a.drafts.SaveDraft(id, story)

	if err := w.Save(ctx, character.Command{
		Name:        name,
		Story:       story,
		Owner:       a.userID,
		PreExisting: preExisting,
		NewMedia:    newItems,
	}); err != nil {
		printlnFn(fmt.Sprintf("Save failed: %s", err.Error()))
		return err
	}

	a.drafts.ClearDraft(id)
	printlnFn("Saved")
	return nil
}

// DeleteCharacter removes a character after confirmation. Media assets
// go first, best-effort, then the document.
func (a *App) DeleteCharacter(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := getSimpleText(a.reader, "Character id", os.Stdout)
	if err != nil {
		return err
	}

	ch, err := character.Load(ctx, a.docs, id).Await(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			printlnFn("No such character")
		} else {
			printlnFn(err.Error())
		}
		return err
	}

	answer, err := getSimpleText(a.reader,
		fmt.Sprintf("Delete %q and its %d media files? (y/N)", ch.Name, len(ch.Files)), os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		printlnFn("Kept " + ch.Name)
		return nil
	}

	if err := character.Delete(ctx, a.docs, a.blobs, a.log, ch); err != nil {
		printlnFn(err.Error())
		return err
	}
	printlnFn("Deleted " + ch.Name)
	return nil
}

// Download saves every media item of a character into a local downloads
// directory.
func (a *App) Download(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := getSimpleText(a.reader, "Character id", os.Stdout)
	if err != nil {
		return err
	}

	ch, err := character.Load(ctx, a.docs, id).Await(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	dir, err := filex.EnsureSubDir("downloads")
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	for _, fileID := range ch.Files {
		url, err := a.urlCache.ImageURL(a.blobs, ch.Owner, fileID).Await(ctx)
		if err != nil {
			printlnFn(fmt.Sprintf("%s: %s", fileID, err.Error()))
			continue
		}
		data, err := netx.DownloadFromURL(url)
		if err != nil {
			printlnFn(fmt.Sprintf("%s: %s", fileID, err.Error()))
			continue
		}
		path, err := filex.SaveToDir(dir, fileID, data)
		if err != nil {
			printlnFn(fmt.Sprintf("%s: %s", fileID, err.Error()))
			continue
		}
		printlnFn("Saved " + path)
	}
	return nil
}
