package adapter

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Archive stores raw photo frames that correlated with a recognition
// result, keyed by capture time. It is an optional sink; the pipeline
// works without one.
type Archive interface {
	// PutFrame saves one frame under its capture timestamp.
	PutFrame(ctx context.Context, capturedAt time.Time, frame []byte) error
}

// gcsArchive implements Archive on Cloud Storage.
type gcsArchive struct {
	bucketName string
	client     *storage.Client
}

// NewArchive creates a Cloud Storage frame archive.
func NewArchive(ctx context.Context, bucketName string) (Archive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &gcsArchive{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (a *gcsArchive) PutFrame(ctx context.Context, capturedAt time.Time, frame []byte) error {
	key := fmt.Sprintf("frames/%s/%d.jpg",
		capturedAt.UTC().Format("2006-01-02"), capturedAt.UnixNano())

	obj := a.client.Bucket(a.bucketName).Object(key)
	w := obj.NewWriter(ctx)
	if _, err := w.Write(frame); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write frame", goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize frame", goerr.V("key", key))
	}

	return nil
}
