package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/glasswing-io/glasswing/pkg/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

const (
	outputCollection = "outputs"
	memoryCollection = "memories"
)

// Client wraps a Firestore connection and exposes durable versions of the
// session stores. The in-memory implementations under repository/memory
// remain the default; this backend is for deployments that keep memories
// across app restarts.
type Client struct {
	client *firestore.Client
}

// New connects to the given Firestore database.
func New(ctx context.Context, projectID, databaseID string) (*Client, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Outputs returns the Firestore-backed output log.
func (c *Client) Outputs() interfaces.OutputStore {
	return &outputStore{client: c.client}
}

// Memories returns the Firestore-backed embedding index with a fixed
// vector dimension.
func (c *Client) Memories(dimension int) interfaces.MemoryIndex {
	return &memoryIndex{client: c.client, dim: dimension}
}

// deleteAll removes every document of a collection with a BulkWriter.
func deleteAll(ctx context.Context, client *firestore.Client, coll *firestore.CollectionRef) error {
	bw := client.BulkWriter(ctx)

	iter := coll.Select().Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate documents for deletion")
		}
		if _, err := bw.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to enqueue deletion")
		}
	}

	bw.End()
	return nil
}

func countAll(ctx context.Context, coll *firestore.CollectionRef) (int, error) {
	iter := coll.Select().Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count documents")
		}
		count++
	}
	return count, nil
}
