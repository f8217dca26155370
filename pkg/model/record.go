package model

import "time"

// MemoryRecord is an entry of the embedding index: a text snippet, its
// embedding vector, and free-form string metadata. IDs are assigned by the
// index, monotonically increasing. Records are never mutated in place; an
// update is a delete followed by a reinsert.
type MemoryRecord struct {
	ID        uint64
	Text      string
	Vector    []float32
	CreatedAt time.Time
	Metadata  map[string]string
}

// Clone returns a deep copy of the record.
func (x *MemoryRecord) Clone() *MemoryRecord {
	copied := &MemoryRecord{
		ID:        x.ID,
		Text:      x.Text,
		CreatedAt: x.CreatedAt,
	}

	if x.Vector != nil {
		copied.Vector = make([]float32, len(x.Vector))
		copy(copied.Vector, x.Vector)
	}

	if x.Metadata != nil {
		copied.Metadata = make(map[string]string, len(x.Metadata))
		for k, v := range x.Metadata {
			copied.Metadata[k] = v
		}
	}

	return copied
}

// MemoryHit is a search result: a record and its cosine similarity to the
// query vector.
type MemoryHit struct {
	Record *MemoryRecord
	Score  float64
}
