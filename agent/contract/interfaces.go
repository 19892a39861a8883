package contract

import "context"

// Generator asks the text-generation service for a diagram description.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (RawResponse, error)
}

// Renderer turns a canonical graph body into an image file and returns its path.
type Renderer interface {
	Render(ctx context.Context, graphBody string) (string, error)
}

// CounterStore persists the run counter. Load reports found=false when no
// state has ever been written.
type CounterStore interface {
	Load(ctx context.Context) (value int, found bool, err error)
	Save(ctx context.Context, value int) error
}

// CounterIncrementer is implemented by stores that can increment atomically.
// A missing counter is created as 1.
type CounterIncrementer interface {
	Increment(ctx context.Context) (int, error)
}

// ArchiveIndex records finished runs for later lookup.
type ArchiveIndex interface {
	Record(ctx context.Context, rec ArchiveRecord) error
}

// DocumentWriter produces the optional per-run document.
type DocumentWriter interface {
	WriteDocument(id RunIdentity, report string, imagePath string) (string, error)
}
