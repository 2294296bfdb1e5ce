package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across repository backends
var (
	ErrMemoryNotFound = goerr.New("memory not found")
)
