package llm

import "context"

// Image is a single image input for multimodal generation.
type Image struct {
	// Format is the image format without the "image/" prefix, e.g. "jpeg".
	Format string
	Data   []byte
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	GenerateFromImages(ctx context.Context, prompt string, images []Image) (string, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
