package model

// Outcome is the result envelope for every core operation. Success implies
// Content is populated for data-carrying operations; failure implies Message
// describes the cause. Above the gateway/store boundary only Outcome values
// cross component edges, never raw errors.
type Outcome[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Content *T     `json:"content"`
}

// OK builds a success outcome carrying content.
func OK[T any](message string, content *T) *Outcome[T] {
	return &Outcome[T]{Success: true, Message: message, Content: content}
}

// Fail builds a failure outcome with no content.
func Fail[T any](message string) *Outcome[T] {
	return &Outcome[T]{Success: false, Message: message}
}

// FailWith builds a failure outcome that still carries content. The insight
// gateway uses this to echo the original input so callers can decide to
// proceed without commentary.
func FailWith[T any](message string, content *T) *Outcome[T] {
	return &Outcome[T]{Success: false, Message: message, Content: content}
}
