package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// outputDoc is the Firestore document representation of model.AgentOutput.
// Seq preserves insertion order, which Firestore does not track by itself.
type outputDoc struct {
	ID           string         `firestore:"ID"`
	Seq          int64          `firestore:"Seq"`
	ProducedAt   time.Time      `firestore:"ProducedAt"`
	Kind         string         `firestore:"Kind"`
	Text         string         `firestore:"Text"`
	Confidence   float64        `firestore:"Confidence"`
	CorrelatedAt []time.Time    `firestore:"CorrelatedAt,omitempty"`
	Metadata     map[string]any `firestore:"Metadata,omitempty"`
}

func toOutputDoc(output *model.AgentOutput) *outputDoc {
	doc := &outputDoc{
		ID:           string(output.ID),
		Seq:          time.Now().UnixNano(),
		ProducedAt:   output.ProducedAt,
		Kind:         string(output.Kind),
		Text:         output.Text,
		Confidence:   output.Confidence,
		CorrelatedAt: output.CorrelatedAt,
	}
	if len(output.Metadata) > 0 {
		doc.Metadata = make(map[string]any, len(output.Metadata))
		for k, v := range output.Metadata {
			doc.Metadata[k] = v.ToAny()
		}
	}
	return doc
}

func fromOutputDoc(d *outputDoc) *model.AgentOutput {
	output := &model.AgentOutput{
		ID:           model.OutputID(d.ID),
		ProducedAt:   d.ProducedAt,
		Kind:         model.OutputKind(d.Kind),
		Text:         d.Text,
		Confidence:   d.Confidence,
		CorrelatedAt: d.CorrelatedAt,
	}
	if len(d.Metadata) > 0 {
		output.Metadata = make(map[string]model.Value, len(d.Metadata))
		for k, v := range d.Metadata {
			output.Metadata[k] = model.FromAny(v)
		}
	}
	return output
}

type outputStore struct {
	client *firestore.Client
}

func (s *outputStore) collection() *firestore.CollectionRef {
	return s.client.Collection(outputCollection)
}

func (s *outputStore) Append(ctx context.Context, output *model.AgentOutput) error {
	if err := output.Validate(); err != nil {
		return err
	}

	docRef := s.collection().Doc(string(output.ID))
	if _, err := docRef.Set(ctx, toOutputDoc(output)); err != nil {
		return goerr.Wrap(err, "failed to append output", goerr.V("id", output.ID))
	}
	return nil
}

func (s *outputStore) Recent(ctx context.Context, limit int) ([]*model.AgentOutput, error) {
	q := s.collection().OrderBy("ProducedAt", firestore.Desc)
	if limit >= 0 {
		q = q.Limit(limit)
	}
	return s.query(ctx, q)
}

func (s *outputStore) ByKind(ctx context.Context, kind model.OutputKind) ([]*model.AgentOutput, error) {
	q := s.collection().
		Where("Kind", "==", string(kind)).
		OrderBy("Seq", firestore.Asc)
	return s.query(ctx, q)
}

func (s *outputStore) InRange(ctx context.Context, start, end time.Time) ([]*model.AgentOutput, error) {
	q := s.collection().
		Where("ProducedAt", ">=", start).
		Where("ProducedAt", "<", end).
		OrderBy("ProducedAt", firestore.Asc)
	return s.query(ctx, q)
}

func (s *outputStore) Count(ctx context.Context) (int, error) {
	return countAll(ctx, s.collection())
}

func (s *outputStore) Clear(ctx context.Context) error {
	return deleteAll(ctx, s.client, s.collection())
}

func (s *outputStore) query(ctx context.Context, q firestore.Query) ([]*model.AgentOutput, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	outputs := make([]*model.AgentOutput, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate outputs")
		}

		var d outputDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal output")
		}
		outputs = append(outputs, fromOutputDoc(&d))
	}

	return outputs, nil
}
