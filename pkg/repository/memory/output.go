package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/glasswing-io/glasswing/pkg/interfaces"
	"github.com/glasswing-io/glasswing/pkg/model"
)

// outputStore is the in-memory OutputStore. Every query copies the
// matching outputs so callers can never mutate the log through results.
type outputStore struct {
	mu      sync.RWMutex
	outputs []*model.AgentOutput
}

// NewOutputStore creates an empty in-memory output log.
func NewOutputStore() interfaces.OutputStore {
	return &outputStore{}
}

func (s *outputStore) Append(ctx context.Context, output *model.AgentOutput) error {
	if err := output.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outputs = append(s.outputs, output.Clone())
	return nil
}

func (s *outputStore) Recent(ctx context.Context, limit int) ([]*model.AgentOutput, error) {
	s.mu.RLock()
	sorted := make([]*model.AgentOutput, len(s.outputs))
	copy(sorted, s.outputs)
	s.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProducedAt.After(sorted[j].ProducedAt)
	})

	if limit >= 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	results := make([]*model.AgentOutput, len(sorted))
	for i, output := range sorted {
		results[i] = output.Clone()
	}
	return results, nil
}

func (s *outputStore) ByKind(ctx context.Context, kind model.OutputKind) ([]*model.AgentOutput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*model.AgentOutput, 0)
	for _, output := range s.outputs {
		if output.Kind == kind {
			results = append(results, output.Clone())
		}
	}
	return results, nil
}

func (s *outputStore) InRange(ctx context.Context, start, end time.Time) ([]*model.AgentOutput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*model.AgentOutput, 0)
	for _, output := range s.outputs {
		if output.ProducedAt.IsZero() {
			continue
		}
		if !output.ProducedAt.Before(start) && output.ProducedAt.Before(end) {
			results = append(results, output.Clone())
		}
	}
	return results, nil
}

func (s *outputStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.outputs), nil
}

func (s *outputStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs = nil
	return nil
}
