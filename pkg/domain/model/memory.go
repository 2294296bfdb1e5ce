package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oneiro-lab/morpheus/pkg/domain/types"
)

// Memory is a persisted dream/memory entry. ID and CreatedAt are set once
// at creation and never mutated; AIThoughts and TelegraphURL stay nil until
// the corresponding pipeline stage succeeds.
type Memory struct {
	ID           types.MemoryID `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	AIThoughts   *string        `json:"ai_thoughts"`
	TelegraphURL *string        `json:"telegraph_url"`
	CreatedAt    time.Time      `json:"created_at"`
}

// MemoryInput is the unvalidated shape a caller submits to create a memory.
type MemoryInput struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Validate rejects inputs with a blank title or content.
func (x *MemoryInput) Validate() error {
	if strings.TrimSpace(x.Title) == "" {
		return goerr.New("memory title is required")
	}
	if strings.TrimSpace(x.Content) == "" {
		return goerr.New("memory content is required")
	}
	return nil
}

// Normalize fills in defaults for fields the caller may omit.
func (x *MemoryInput) Normalize() {
	if x.CreatedAt.IsZero() {
		x.CreatedAt = time.Now().UTC()
	}
}

// Draft returns the pre-identity shape for this input, with no commentary
// and no public link yet.
func (x *MemoryInput) Draft() *MemoryDraft {
	return &MemoryDraft{
		Title:     x.Title,
		Content:   x.Content,
		CreatedAt: x.CreatedAt,
	}
}

// MemoryDraft is the shape produced by the insight gateway: the submitted
// input plus generated commentary, before the store assigns an identity.
type MemoryDraft struct {
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	AIThoughts   *string   `json:"ai_thoughts"`
	TelegraphURL *string   `json:"telegraph_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// MemoryPatch is a partial update. Only non-nil fields overwrite the stored
// value; a nil field means "leave unchanged".
type MemoryPatch struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	AIThoughts   *string `json:"ai_thoughts"`
	TelegraphURL *string `json:"telegraph_url"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *MemoryPatch) IsEmpty() bool {
	return p == nil ||
		(p.Title == nil && p.Content == nil && p.AIThoughts == nil && p.TelegraphURL == nil)
}

// Apply overwrites m's fields with the patch's non-nil values. ID and
// CreatedAt are never touched.
func (p *MemoryPatch) Apply(m *Memory) {
	if p == nil {
		return
	}
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.AIThoughts != nil {
		m.AIThoughts = p.AIThoughts
	}
	if p.TelegraphURL != nil {
		m.TelegraphURL = p.TelegraphURL
	}
}
