package storage

import "errors"

// ErrNotInitialized is returned when store operations are attempted
// before the store is opened or after it has been closed.
var ErrNotInitialized = errors.New("store not initialized")

// ErrNotFound is returned when no memory exists for a contact. This is a
// routine outcome for new contacts, not a failure.
type ErrNotFound struct {
	ContactID string
}

func (e ErrNotFound) Error() string {
	if e.ContactID == "" {
		return "contact not found"
	}

	return "contact not found: " + e.ContactID
}

// IsNotFound reports whether err is an ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
