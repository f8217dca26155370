package agent

import (
	"sync"

	"github.com/glasswing-io/glasswing/pkg/stream"
)

// photoRing is a bounded buffer of recent photo frames. It is the most
// contended structure in the pipeline: the photo path writes, the audio
// path reads for correlation. Readers take a snapshot copy so the lock is
// never held during the correlation scan.
type photoRing struct {
	mu       sync.Mutex
	items    []stream.Stamped[[]byte]
	capacity int
}

func newPhotoRing(capacity int) *photoRing {
	return &photoRing{capacity: capacity}
}

// Add appends a frame, evicting the oldest beyond capacity.
func (r *photoRing) Add(item stream.Stamped[[]byte]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, item)
	if len(r.items) > r.capacity {
		r.items = r.items[len(r.items)-r.capacity:]
	}
}

// Snapshot returns a copy of the buffered frames.
func (r *photoRing) Snapshot() []stream.Stamped[[]byte] {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]stream.Stamped[[]byte], len(r.items))
	copy(items, r.items)
	return items
}

func (r *photoRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *photoRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
