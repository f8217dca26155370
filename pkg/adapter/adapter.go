package adapter

import "context"

// Transcript is a successful speech recognition result.
type Transcript struct {
	Text       string
	Confidence float64
}

// TextBlock is one region of recognized text in an image.
type TextBlock struct {
	Text       string
	Confidence float64
}

// Extraction is a successful OCR result over a photo frame.
type Extraction struct {
	Text       string
	Confidence float64
	Blocks     []TextBlock
}

// Recognizer converts raw sensor bytes into text. Implementations wrap
// real model inference; "nothing recognized" is a soft miss reported as
// (nil, nil), never an error.
type Recognizer interface {
	// Transcribe runs speech recognition over an audio frame.
	Transcribe(ctx context.Context, audio []byte) (*Transcript, error)

	// ExtractText runs OCR over an image frame.
	ExtractText(ctx context.Context, image []byte) (*Extraction, error)
}

// Embedder converts text into a fixed-dimension embedding vector.
// Implementations may normalize internally; the index does not require it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the length of vectors produced by Embed.
	Dimension() int
}
