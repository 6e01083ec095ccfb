// Package gravatar fetches and memoizes profile photos for email
// addresses: resolve the profile record for an email, then fetch the
// binary photo it references. Failures are classified into a typed
// taxonomy (missing profile, unreachable profile, unreachable photo).
package gravatar

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public gravatar profile endpoint.
const DefaultBaseURL = "https://gravatar.com"

// Client performs the two-step lookup against a gravatar-compatible
// profile service.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// profile mirrors the subset of the gravatar profile JSON we read.
type profile struct {
	Entry []struct {
		ThumbnailURL string `json:"thumbnailUrl"`
	} `json:"entry"`
}

// EmailHash returns the gravatar identifier for an email: the MD5 of the
// trimmed, lowercased address.
func EmailHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// ProfileURL returns the profile record URL for an email.
func (c *Client) ProfileURL(email string) string {
	return fmt.Sprintf("%s/%s.json", c.base, EmailHash(email))
}

// FetchThumbnail resolves the profile record for email and then fetches
// the photo it references, returning the photo URL. Errors are typed:
// *MissingProfileError for a 404 profile, *UnreachableProfileError for
// any other profile failure, *UnreachablePhotoError when the profile
// resolved but the photo fetch failed.
func (c *Client) FetchThumbnail(ctx context.Context, email string) (string, error) {
	photoURL, err := c.fetchProfilePhotoURL(ctx, email)
	if err != nil {
		return "", err
	}

	if err := c.checkPhoto(ctx, email, photoURL); err != nil {
		return "", err
	}
	return photoURL, nil
}

func (c *Client) fetchProfilePhotoURL(ctx context.Context, email string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ProfileURL(email), nil)
	if err != nil {
		return "", &UnreachableProfileError{Email: email, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &UnreachableProfileError{Email: email, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", &MissingProfileError{Email: email, Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return "", &UnreachableProfileError{
			Email:  email,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var p profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return "", &UnreachableProfileError{Email: email, Err: err}
	}
	if len(p.Entry) == 0 || p.Entry[0].ThumbnailURL == "" {
		return "", &UnreachableProfileError{
			Email: email,
			Err:   fmt.Errorf("profile record has no thumbnail"),
		}
	}
	return p.Entry[0].ThumbnailURL, nil
}

func (c *Client) checkPhoto(ctx context.Context, email, photoURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return &UnreachablePhotoError{Email: email, URL: photoURL, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &UnreachablePhotoError{Email: email, URL: photoURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &UnreachablePhotoError{
			Email:  email,
			URL:    photoURL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return nil
}
