package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/arthub/internal/character"
	"github.com/dmitrijs2005/arthub/internal/common"
	"github.com/dmitrijs2005/arthub/internal/share"
)

// Share creates a share link for a character and offers to copy it.
func (a *App) Share(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	characterID, err := getSimpleText(a.reader, "Character id", os.Stdout)
	if err != nil {
		return err
	}
	m := a.shareMachine()
	m.ShareCharacter(characterID)

	alias, err := getSimpleText(a.reader, "Alias for this link", os.Stdout)
	if err != nil {
		return err
	}
	m.Confirm(ctx, alias)

	if m.SharingState() == share.ShareFailed {
		printlnFn(fmt.Sprintf("Share failed: %s", m.Err().Error()))
		m.Dismiss()
		return m.Err()
	}

	printlnFn("Share link: " + m.URL())

	answer, err := getSimpleText(a.reader, "Copy to clipboard? (y/n)", os.Stdout)
	if err != nil {
		return err
	}
	if strings.EqualFold(answer, "y") {
		m.CopyURL()
		if m.CopyState() == share.Copied {
			printlnFn("Copied")
		} else {
			printlnFn("Could not access the clipboard")
		}
	}
	m.Dismiss()
	return nil
}

// Open resolves a share link and prints the character behind it. No
// login is required; a link is meant to be opened by anyone holding it.
func (a *App) Open(ctx context.Context) error {
	raw, err := getSimpleText(a.reader, "Share id or URL", os.Stdout)
	if err != nil {
		return err
	}
	// Accept a full share URL; the id is its last path segment.
	id := raw
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		id = raw[i+1:]
	}

	link, err := share.Resolve(ctx, a.docs, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			printlnFn(fmt.Sprintf("Share %q is non-existent", id))
		} else {
			printlnFn(err.Error())
		}
		return err
	}

	ch, err := character.Load(ctx, a.docs, link.CharacterID).Await(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("%s, shared by %s", ch.Name, link.Alias))
	if ch.Story != "" {
		printlnFn(ch.Story)
	}
	printlnFn(fmt.Sprintf("%d media: %s", len(ch.Files), strings.Join(ch.Files, " ")))
	return nil
}

// Shares lists the user's share links.
func (a *App) Shares(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	a.shareMachine().ViewShares()
	links, err := share.OwnedBy(ctx, a.docs, a.userID).Await(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if len(links) == 0 {
		printlnFn("No share links yet. Use 'share' to create one.")
		return nil
	}
	for _, l := range links {
		printlnFn(fmt.Sprintf("%s  %q -> character %s", l.ID, l.Alias, l.CharacterID))
	}
	return nil
}

// Revoke deletes the given share links.
func (a *App) Revoke(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	line, err := getSimpleText(a.reader, "Share ids to revoke (space separated)", os.Stdout)
	if err != nil {
		return err
	}
	ids := strings.Fields(line)
	if len(ids) == 0 {
		return nil
	}

	m := a.shareMachine()
	m.ViewShares()
	m.RevokeShares(ctx, ids...)
	if m.RevokeState() == share.Revoked {
		printlnFn("Revoked")
	} else {
		printlnFn("Some links could not be revoked; run 'shares' to see what is left")
	}
	return nil
}
