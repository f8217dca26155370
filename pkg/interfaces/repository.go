package interfaces

import (
	"context"
	"time"

	"github.com/glasswing-io/glasswing/pkg/model"
)

// OutputStore is a session-scoped append log of agent outputs. Append and
// the query methods must be safe to call concurrently; queries see a
// consistent snapshot.
type OutputStore interface {
	// Append adds an output to the log, preserving insertion order.
	Append(ctx context.Context, output *model.AgentOutput) error

	// Recent returns up to limit outputs ordered by ProducedAt descending.
	// Outputs can arrive out of temporal order under concurrent
	// processing, so this is a re-sort, not a tail of the log.
	Recent(ctx context.Context, limit int) ([]*model.AgentOutput, error)

	// ByKind returns all outputs of the kind, in insertion order.
	ByKind(ctx context.Context, kind model.OutputKind) ([]*model.AgentOutput, error)

	// InRange returns outputs with start <= ProducedAt < end.
	InRange(ctx context.Context, start, end time.Time) ([]*model.AgentOutput, error)

	// Count returns the number of stored outputs.
	Count(ctx context.Context) (int, error)

	// Clear empties the log. It does not touch the memory index.
	Clear(ctx context.Context) error
}

// MemoryIndex stores embedding vectors with their source text and answers
// top-K cosine similarity queries.
type MemoryIndex interface {
	// Insert stores a record and returns its assigned ID. The vector
	// dimension must match the index; otherwise ErrDimensionMismatch is
	// returned and the index is left unchanged.
	Insert(ctx context.Context, text string, vector []float32, metadata map[string]string) (uint64, error)

	// Search returns up to topK records whose cosine similarity to the
	// query vector is at least threshold, ordered by score descending.
	// An empty index yields an empty result, not an error.
	Search(ctx context.Context, vector []float32, topK int, threshold float64) ([]*model.MemoryHit, error)

	// All returns every stored record in insertion order.
	All(ctx context.Context) ([]*model.MemoryRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Delete removes a record by ID. Missing IDs are a no-op.
	Delete(ctx context.Context, id uint64) error

	// Clear removes all records.
	Clear(ctx context.Context) error

	// Dimension returns the fixed vector dimensionality of the index.
	Dimension() int
}
