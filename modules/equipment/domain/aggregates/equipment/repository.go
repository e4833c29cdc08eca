package equipment

import "context"

type SortField string

const (
	SortBySerial    SortField = "serial"
	SortByUpdatedAt SortField = "updated_at"
)

type FindParams struct {
	// Query matches serial, device name or current user.
	Query  string
	Status Status
	SortBy SortField
	Limit  int
	Offset int
}

type Repository interface {
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Equipment, error)
	GetAll(ctx context.Context) ([]Equipment, error)
	GetByID(ctx context.Context, id uint) (Equipment, error)
	// GetBySerial matches on the normalized merge key, not the raw serial.
	GetBySerial(ctx context.Context, serial string) (Equipment, error)
	Create(ctx context.Context, e Equipment) (Equipment, error)
	Update(ctx context.Context, id uint, changes Record) (Equipment, error)
	Delete(ctx context.Context, id uint) error
	// ReplaceAll removes every equipment row (history cascades) and bulk-inserts items.
	ReplaceAll(ctx context.Context, items []Equipment) (int64, error)
}
