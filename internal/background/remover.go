// Package background removes the backdrop from encoded images, leaving a
// PNG whose background pixels are transparent black.
package background

import "context"

// Remover takes encoded image bytes and returns PNG bytes with an alpha channel
type Remover interface {
	Remove(ctx context.Context, image []byte) ([]byte, error)
	Close() error
}
