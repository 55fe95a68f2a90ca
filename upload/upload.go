package upload

import (
	"context"
	"io"
)

// Provider represents a file upload provider implementation,
// used to host food item photos
type Provider interface {
	MaxBytes() int64
	Upload(ctx context.Context, part io.Reader, ext string, mime string) (string, error)
}
