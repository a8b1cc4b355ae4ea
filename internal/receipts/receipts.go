// Package receipts sequences receipt file uploads against blob storage
// and hands back retrievable URLs. Attaching a URL to an expense record
// is the caller's job, via the view store's create or update.
package receipts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"expensedash/internal/log"
)

// ErrNoFile reports an upload invoked without a file.
var ErrNoFile = errors.New("no file provided")

// UploadError wraps a blob store rejection.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload receipt %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// BlobStore is the outbound port to blob storage.
type BlobStore interface {
	// Put stores the object bytes under path. No overwrite semantics are
	// assumed; paths are unique by construction.
	Put(ctx context.Context, path string, r io.Reader) error

	// PublicURL returns the retrievable URL for a stored object.
	PublicURL(path string) string
}

// Coordinator runs one upload at a time per instance and tracks a
// busy/idle status for UI feedback. The Uploading status is cleared on
// every exit path.
type Coordinator struct {
	blob   BlobStore
	logger *log.Logger
	now    func() time.Time

	mu        sync.Mutex
	uploading bool
}

func NewCoordinator(blob BlobStore, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Coordinator{
		blob:   blob,
		logger: logger.WithComponent(log.ComponentReceipts),
		now:    time.Now,
	}
}

// Uploading reports whether an upload is in flight.
func (c *Coordinator) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

// Upload stores the file and returns its public URL. The object path is
// {owner}/{upload unix-milli}{original extension}, keeping uploads
// collision-free across users and over time. Fails with ErrNoFile before
// entering the Uploading state when no file is provided.
func (c *Coordinator) Upload(ctx context.Context, owner, filename string, file io.Reader) (string, error) {
	if file == nil || filename == "" {
		return "", ErrNoFile
	}
	if owner == "" {
		return "", ErrNoFile
	}

	c.setUploading(true)
	defer c.setUploading(false)

	objectPath := c.objectPath(owner, filename)
	if err := c.blob.Put(ctx, objectPath, file); err != nil {
		c.logger.ErrorContext(ctx, "Receipt upload failed",
			log.FieldError, err,
			log.FieldOwner, owner,
			log.FieldReceiptPath, objectPath)
		return "", &UploadError{Path: objectPath, Err: err}
	}

	url := c.blob.PublicURL(objectPath)
	c.logger.InfoContext(ctx, "Receipt uploaded",
		log.FieldOwner, owner,
		log.FieldReceiptPath, objectPath)
	return url, nil
}

func (c *Coordinator) objectPath(owner, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d%s", owner, c.now().UnixMilli(), ext)
}

func (c *Coordinator) setUploading(v bool) {
	c.mu.Lock()
	c.uploading = v
	c.mu.Unlock()
}
