package gravatar

import "fmt"

// MissingProfileError reports that the looked-up email has no gravatar
// profile. This is the expected "no such resource" outcome, distinct from
// transport failures, so callers can render "no photo" instead of "try
// again".
type MissingProfileError struct {
	Email  string
	Status int
}

func (e *MissingProfileError) Error() string {
	return fmt.Sprintf("%s doesn't have a gravatar (status %d)", e.Email, e.Status)
}

// UnreachableProfileError reports that the profile lookup failed for a
// reason other than a missing profile (transport error or unexpected
// status).
type UnreachableProfileError struct {
	Email  string
	Status int
	Err    error
}

func (e *UnreachableProfileError) Error() string {
	return fmt.Sprintf("retrieving the gravatar profile of %s: %v", e.Email, e.Err)
}

func (e *UnreachableProfileError) Unwrap() error { return e.Err }

// UnreachablePhotoError reports that the profile lookup succeeded but the
// photo it references could not be fetched. Kept distinct from
// UnreachableProfileError so callers can tell "no such profile" from
// "profile exists but photo unreachable".
type UnreachablePhotoError struct {
	Email  string
	URL    string
	Status int
	Err    error
}

func (e *UnreachablePhotoError) Error() string {
	return fmt.Sprintf("retrieving the gravatar photo of %s from %s: %v", e.Email, e.URL, e.Err)
}

func (e *UnreachablePhotoError) Unwrap() error { return e.Err }
