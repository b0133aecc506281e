// Package storage abstracts the object store used for post media and
// profile pictures. The core treats returned URLs as opaque strings.
package storage

import "context"

// ObjectStore is the external object-storage collaborator.
type ObjectStore interface {
	// Put stores data under path and returns a retrievable URL.
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// Delete removes the object a previous Put returned url for.
	// Deleting an unknown URL is not an error.
	Delete(ctx context.Context, url string) error
}
