package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/glasswing-io/glasswing/pkg/interfaces"
	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrDimensionMismatch = goerr.New("vector dimension mismatch")
)

const (
	// DefaultDimension matches the on-device sentence embedding model.
	DefaultDimension = 384

	// DefaultSearchThreshold filters out weakly related memories.
	DefaultSearchThreshold = 0.3
)

// memoryIndex is a brute-force cosine similarity index. At on-device scale
// (hundreds to low thousands of memories) an exact linear scan is
// sub-millisecond, so no approximate index is used. Vectors are stored
// as provided; normalization is the embedder's concern and Search computes
// the full cosine either way.
type memoryIndex struct {
	mu      sync.RWMutex
	dim     int
	nextID  uint64
	records []*model.MemoryRecord
}

// NewMemoryIndex creates an empty index with a fixed vector dimension.
// Non-positive dimensions fall back to DefaultDimension.
func NewMemoryIndex(dimension int) interfaces.MemoryIndex {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &memoryIndex{dim: dimension, nextID: 1}
}

func (x *memoryIndex) Dimension() int {
	return x.dim
}

func (x *memoryIndex) Insert(ctx context.Context, text string, vector []float32, metadata map[string]string) (uint64, error) {
	if len(vector) != x.dim {
		return 0, goerr.Wrap(ErrDimensionMismatch, "insert rejected",
			goerr.V("expected", x.dim), goerr.V("actual", len(vector)))
	}

	record := &model.MemoryRecord{
		Text:      text,
		CreatedAt: time.Now(),
		Vector:    make([]float32, len(vector)),
	}
	copy(record.Vector, vector)
	if metadata != nil {
		record.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			record.Metadata[k] = v
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	record.ID = x.nextID
	x.nextID++
	x.records = append(x.records, record)

	return record.ID, nil
}

func (x *memoryIndex) Search(ctx context.Context, vector []float32, topK int, threshold float64) ([]*model.MemoryHit, error) {
	if len(vector) != x.dim {
		return nil, goerr.Wrap(ErrDimensionMismatch, "search rejected",
			goerr.V("expected", x.dim), goerr.V("actual", len(vector)))
	}

	x.mu.RLock()
	hits := make([]*model.MemoryHit, 0, len(x.records))
	for _, record := range x.records {
		score := CosineSimilarity(vector, record.Vector)
		if score >= threshold {
			hits = append(hits, &model.MemoryHit{Record: record.Clone(), Score: score})
		}
	}
	x.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if topK >= 0 && topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func (x *memoryIndex) All(ctx context.Context) ([]*model.MemoryRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	records := make([]*model.MemoryRecord, len(x.records))
	for i, record := range x.records {
		records[i] = record.Clone()
	}
	return records, nil
}

func (x *memoryIndex) Count(ctx context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records), nil
}

func (x *memoryIndex) Delete(ctx context.Context, id uint64) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for i, record := range x.records {
		if record.ID == id {
			x.records = append(x.records[:i], x.records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (x *memoryIndex) Clear(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.records = nil
	return nil
}

// CosineSimilarity computes dot(a,b)/(|a||b|). It returns 0.0 rather than
// NaN when either vector has zero norm or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
