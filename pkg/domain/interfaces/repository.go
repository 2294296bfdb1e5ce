package interfaces

// Repository aggregates data access and owns the underlying storage handle.
type Repository interface {
	Memory() MemoryRepository
	Close() error
}
