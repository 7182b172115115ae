// Package remote publishes normalized photos to a path-addressed content
// store and derives their public URLs.
package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrPublishFailure is matched by every *PublishError.
var ErrPublishFailure = errors.New("publish failed")

// PublishError carries the store's non-success response.
type PublishError struct {
	Path   string
	Status int
	Body   string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: status %d: %s", e.Path, e.Status, e.Body)
}

func (e *PublishError) Is(target error) bool {
	return target == ErrPublishFailure
}

// Object is what a store knows about a path before writing to it.
type Object struct {
	Exists bool
	// Revision is the token a store requires to overwrite the object.
	Revision string
}

// PutRequest is a create-or-update of one object.
type PutRequest struct {
	Path    string
	Content []byte
	Message string
	// Revision must be the current token when the object exists and empty
	// when it does not.
	Revision string
}

// Store is a path-addressed object store with optimistic concurrency.
type Store interface {
	Name() string
	Stat(ctx context.Context, path string) (Object, error)
	Put(ctx context.Context, req PutRequest) error
	PublicURL(path string) string
}

// Publisher applies the check-then-write policy on top of a Store.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Publish uploads localPath to remotePath, overwriting any previous
// version, and returns the object's public URL. It does not retry.
func (p *Publisher) Publish(ctx context.Context, remotePath, localPath string) (string, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", localPath, err)
	}

	obj, err := p.store.Stat(ctx, remotePath)
	if err != nil {
		return "", fmt.Errorf("stat %s on %s: %w", remotePath, p.store.Name(), err)
	}

	req := PutRequest{
		Path:    remotePath,
		Content: content,
		Message: "Upload " + remotePath,
	}
	if obj.Exists {
		req.Revision = obj.Revision
	}
	if err := p.store.Put(ctx, req); err != nil {
		return "", err
	}
	return p.store.PublicURL(remotePath), nil
}
