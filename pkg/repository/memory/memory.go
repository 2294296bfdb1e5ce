package memory

import (
	"github.com/oneiro-lab/morpheus/pkg/domain/interfaces"
)

// Memory is an in-memory repository for development and tests.
type Memory struct {
	memory *memoryRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		memory: newMemoryRepository(),
	}
}

func (m *Memory) Memory() interfaces.MemoryRepository {
	return m.memory
}

func (m *Memory) Close() error {
	return nil
}
