package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/arthub/internal/gravatar"
)

// Avatar looks up the gravatar photo for an email. Repeated lookups for
// the same email are served from the in-process cache.
func (a *App) Avatar(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email to look up", os.Stdout)
	if err != nil {
		return err
	}

	switch a.avatar.Fetch(ctx, email) {
	case gravatar.StateFound:
		printlnFn("Photo: " + a.avatar.URL())
	case gravatar.StateNotFound:
		printlnFn("No gravatar profile for " + email)
	case gravatar.StateFailed:
		printlnFn(fmt.Sprintf("Lookup failed: %s", a.avatar.Err().Error()))
	}
	return nil
}
