package firestore

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/glasswing-io/glasswing/pkg/model"
	memrepo "github.com/glasswing-io/glasswing/pkg/repository/memory"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// memoryDoc is the Firestore document representation of model.MemoryRecord.
// Vector is stored as firestore.Vector32 so that FindNearest works.
type memoryDoc struct {
	ID        int64              `firestore:"ID"`
	Text      string             `firestore:"Text"`
	Vector    firestore.Vector32 `firestore:"Vector,omitempty"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
	Metadata  map[string]string  `firestore:"Metadata,omitempty"`
}

func fromMemoryDoc(d *memoryDoc) *model.MemoryRecord {
	record := &model.MemoryRecord{
		ID:        uint64(d.ID),
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
		Metadata:  d.Metadata,
	}
	if len(d.Vector) > 0 {
		record.Vector = []float32(d.Vector)
	}
	return record
}

type memoryIndex struct {
	client *firestore.Client
	dim    int
}

func (x *memoryIndex) collection() *firestore.CollectionRef {
	return x.client.Collection(memoryCollection)
}

func (x *memoryIndex) Dimension() int {
	return x.dim
}

// Insert assigns UnixNano-based IDs: monotonic for this store's purpose
// (insertion-ordered tie-breaking) without a distributed counter.
func (x *memoryIndex) Insert(ctx context.Context, text string, vector []float32, metadata map[string]string) (uint64, error) {
	if len(vector) != x.dim {
		return 0, goerr.Wrap(memrepo.ErrDimensionMismatch, "insert rejected",
			goerr.V("expected", x.dim), goerr.V("actual", len(vector)))
	}

	id := time.Now().UnixNano()
	doc := &memoryDoc{
		ID:        id,
		Text:      text,
		Vector:    firestore.Vector32(vector),
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	docRef := x.collection().Doc(strconv.FormatInt(id, 10))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return 0, goerr.Wrap(err, "failed to insert memory", goerr.V("id", id))
	}

	return uint64(id), nil
}

// Search delegates the nearest-neighbor scan to Firestore FindNearest and
// applies the score threshold client-side from the returned vectors.
func (x *memoryIndex) Search(ctx context.Context, vector []float32, topK int, threshold float64) ([]*model.MemoryHit, error) {
	if len(vector) != x.dim {
		return nil, goerr.Wrap(memrepo.ErrDimensionMismatch, "search rejected",
			goerr.V("expected", x.dim), goerr.V("actual", len(vector)))
	}
	if topK < 0 {
		topK = 0
	}

	vq := x.collection().
		FindNearest("Vector", firestore.Vector32(vector), topK, firestore.DistanceMeasureCosine, nil)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	hits := make([]*model.MemoryHit, 0, topK)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory from vector search")
		}

		record := fromMemoryDoc(&d)
		score := memrepo.CosineSimilarity(vector, record.Vector)
		if score >= threshold {
			hits = append(hits, &model.MemoryHit{Record: record, Score: score})
		}
	}

	return hits, nil
}

func (x *memoryIndex) All(ctx context.Context) ([]*model.MemoryRecord, error) {
	iter := x.collection().OrderBy("ID", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	records := make([]*model.MemoryRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories")
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory")
		}
		records = append(records, fromMemoryDoc(&d))
	}

	return records, nil
}

func (x *memoryIndex) Count(ctx context.Context) (int, error) {
	return countAll(ctx, x.collection())
}

func (x *memoryIndex) Delete(ctx context.Context, id uint64) error {
	docRef := x.collection().Doc(strconv.FormatUint(id, 10))
	if _, err := docRef.Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to delete memory", goerr.V("id", id))
	}
	return nil
}

func (x *memoryIndex) Clear(ctx context.Context) error {
	return deleteAll(ctx, x.client, x.collection())
}
