package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oneiro-lab/morpheus/pkg/domain/model"
	"github.com/oneiro-lab/morpheus/pkg/domain/types"
)

type memoryRepository struct {
	mu       sync.RWMutex
	memories map[types.MemoryID]*model.Memory
	nextID   types.MemoryID
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		memories: make(map[types.MemoryID]*model.Memory),
		nextID:   1,
	}
}

// copyMemory creates a deep copy so callers never share pointers with the
// stored record.
func copyMemory(m *model.Memory) *model.Memory {
	copied := &model.Memory{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.AIThoughts != nil {
		v := *m.AIThoughts
		copied.AIThoughts = &v
	}
	if m.TelegraphURL != nil {
		v := *m.TelegraphURL
		copied.TelegraphURL = &v
	}
	return copied
}

func (r *memoryRepository) Create(ctx context.Context, draft *model.MemoryDraft) (*model.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := &model.Memory{
		ID:        r.nextID,
		Title:     draft.Title,
		Content:   draft.Content,
		CreatedAt: draft.CreatedAt,
	}
	if draft.AIThoughts != nil {
		v := *draft.AIThoughts
		created.AIThoughts = &v
	}
	if draft.TelegraphURL != nil {
		v := *draft.TelegraphURL
		created.TelegraphURL = &v
	}
	r.nextID++

	r.memories[created.ID] = created
	return copyMemory(created), nil
}

func (r *memoryRepository) Get(ctx context.Context, id types.MemoryID) (*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.memories[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrMemoryNotFound, "no such memory", goerr.V("id", id))
	}

	return copyMemory(m), nil
}

func (r *memoryRepository) Update(ctx context.Context, id types.MemoryID, patch *model.MemoryPatch) (*model.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.memories[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrMemoryNotFound, "no such memory", goerr.V("id", id))
	}

	patch.Apply(m)
	return copyMemory(m), nil
}

func (r *memoryRepository) Delete(ctx context.Context, id types.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.memories[id]; !exists {
		return goerr.Wrap(types.ErrMemoryNotFound, "no such memory", goerr.V("id", id))
	}

	delete(r.memories, id)
	return nil
}
