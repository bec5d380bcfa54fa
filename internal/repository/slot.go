package repository

import "context"

// Slot is one named durable value. Read returns appErrors.ErrSlotEmpty when nothing is stored;
// any other error means the backend could not be reached.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Remove(ctx context.Context) error
}
