package interfaces

import (
	"context"

	"github.com/oneiro-lab/morpheus/pkg/domain/model"
	"github.com/oneiro-lab/morpheus/pkg/domain/types"
)

// MemoryRepository defines the raw persistence engine for memories. It
// returns plain errors; conversion into Outcome envelopes happens in the
// usecase layer, which is the only caller.
type MemoryRepository interface {
	// Create inserts a draft, assigns a fresh ID, and returns the persisted
	// record.
	Create(ctx context.Context, draft *model.MemoryDraft) (*model.Memory, error)

	// Get retrieves a memory by ID. Returns types.ErrMemoryNotFound if no
	// record exists.
	Get(ctx context.Context, id types.MemoryID) (*model.Memory, error)

	// Update applies the non-nil fields of patch atomically with respect to
	// concurrent updates on the same ID and returns the full updated record.
	// Returns types.ErrMemoryNotFound if no record exists.
	Update(ctx context.Context, id types.MemoryID, patch *model.MemoryPatch) (*model.Memory, error)

	// Delete permanently removes a memory. Returns types.ErrMemoryNotFound
	// if no record exists.
	Delete(ctx context.Context, id types.MemoryID) error
}
