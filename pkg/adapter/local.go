package adapter

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LocalEmbedder is a deterministic hashed-feature embedder for offline and
// test use. Tokens are hashed into a fixed-size bag-of-words vector which
// is then L2-normalized, so texts sharing words score high on cosine
// similarity. It is not a semantic model; production deployments use
// GeminiClient behind the same interface.
type LocalEmbedder struct {
	dim int
}

func NewLocalEmbedder(dimension int) *LocalEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &LocalEmbedder{dim: dimension}
}

func (e *LocalEmbedder) Dimension() int {
	return e.dim
}

func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		sum := h.Sum32()

		// Sign bit from the hash avoids all-positive vectors, which would
		// make every pair of texts weakly similar.
		slot := int(sum % uint32(e.dim))
		if sum&0x80000000 != 0 {
			vec[slot] -= 1
		} else {
			vec[slot] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// LocalRecognizer is a deterministic stand-in for on-device ASR/OCR: it
// accepts frames whose payload is printable UTF-8 text and reports a
// length-based confidence estimate. Real model inference replaces it
// behind the Recognizer contract.
type LocalRecognizer struct{}

func NewLocalRecognizer() *LocalRecognizer {
	return &LocalRecognizer{}
}

func (r *LocalRecognizer) Transcribe(ctx context.Context, audio []byte) (*Transcript, error) {
	text, ok := decodeText(audio)
	if !ok {
		return nil, nil
	}

	return &Transcript{
		Text:       text,
		Confidence: estimateConfidence(text),
	}, nil
}

func (r *LocalRecognizer) ExtractText(ctx context.Context, image []byte) (*Extraction, error) {
	text, ok := decodeText(image)
	if !ok {
		return nil, nil
	}

	ext := &Extraction{
		Text:       text,
		Confidence: estimateConfidence(text),
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ext.Blocks = append(ext.Blocks, TextBlock{
			Text:       line,
			Confidence: estimateConfidence(line),
		})
	}

	return ext, nil
}

func decodeText(raw []byte) (string, bool) {
	if len(raw) == 0 || !utf8.Valid(raw) {
		return "", false
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", false
	}
	for _, r := range text {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return "", false
		}
	}
	return text, true
}

// estimateConfidence is a heuristic, not a model score: longer inputs with
// a higher share of word characters get more confidence, capped below 1.
func estimateConfidence(text string) float64 {
	if text == "" {
		return 0
	}

	words := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			words++
		}
	}

	ratio := float64(words) / float64(utf8.RuneCountInString(text))
	length := math.Min(float64(len(text))/80.0, 1.0)

	return math.Min(0.5+0.3*ratio+0.15*length, 0.95)
}
