package receipts

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	blobmem "expensedash/internal/receipts/memory"
)

// observingBlob records whether the coordinator was marked busy while the
// blob store ran.
type observingBlob struct {
	inner        *blobmem.Store
	coord        *Coordinator
	busyDuring   bool
	observedPath string
}

func (b *observingBlob) Put(ctx context.Context, path string, r io.Reader) error {
	b.busyDuring = b.coord.Uploading()
	b.observedPath = path
	return b.inner.Put(ctx, path, r)
}

func (b *observingBlob) PublicURL(path string) string { return b.inner.PublicURL(path) }

func TestUploadHappyPath(t *testing.T) {
	blob := blobmem.New("")
	c := NewCoordinator(blob, nil)
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }

	url, err := c.Upload(context.Background(), "alice", "receipt.PNG", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	wantPath := "alice/1700000000000.png"
	if !strings.HasSuffix(url, wantPath) {
		t.Fatalf("url %q does not end with %q", url, wantPath)
	}
	data, ok := blob.Object(wantPath)
	if !ok || string(data) != "bytes" {
		t.Fatalf("object not stored: %q %v", data, ok)
	}
	if c.Uploading() {
		t.Fatal("uploading status not cleared after success")
	}
}

func TestUploadNoFile(t *testing.T) {
	blob := blobmem.New("")
	c := NewCoordinator(blob, nil)

	_, err := c.Upload(context.Background(), "alice", "", nil)
	if !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
	if c.Uploading() {
		t.Fatal("must not transition to Uploading without a file")
	}
	if blob.Len() != 0 {
		t.Fatal("nothing should have been stored")
	}
}

func TestUploadBlobFailure(t *testing.T) {
	blob := blobmem.New("")
	blob.FailNext = errors.New("bucket unavailable")
	c := NewCoordinator(blob, nil)

	_, err := c.Upload(context.Background(), "alice", "r.jpg", strings.NewReader("x"))
	var uerr *UploadError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if c.Uploading() {
		t.Fatal("uploading status not cleared after failure")
	}
}

func TestUploadBusyWhileTransferring(t *testing.T) {
	c := NewCoordinator(nil, nil)
	obs := &observingBlob{inner: blobmem.New(""), coord: c}
	c.blob = obs

	if _, err := c.Upload(context.Background(), "alice", "r.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !obs.busyDuring {
		t.Fatal("coordinator must report Uploading during the transfer")
	}
	if !strings.HasPrefix(obs.observedPath, "alice/") || !strings.HasSuffix(obs.observedPath, ".pdf") {
		t.Fatalf("path convention violated: %q", obs.observedPath)
	}
}
