package secretstore

import "context"

// Store is a key/value secret store addressed by slash-separated paths.
type Store interface {
	// Put writes value at path, replacing any previous value.
	Put(ctx context.Context, path, value string) error

	// Get returns the value at path, or errors.ErrSecretNotFound.
	Get(ctx context.Context, path string) (string, error)

	// List returns the names directly under path. Folders end in "/".
	List(ctx context.Context, path string) ([]string, error)

	// Delete removes path and all of its versions.
	Delete(ctx context.Context, path string) error
}
