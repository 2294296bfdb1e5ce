package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/oneiro-lab/morpheus/pkg/domain/interfaces"
	"github.com/oneiro-lab/morpheus/pkg/domain/model"
	"github.com/oneiro-lab/morpheus/pkg/domain/types"
	"github.com/oneiro-lab/morpheus/pkg/service/insight"
	"github.com/oneiro-lab/morpheus/pkg/service/telegraph"
	"github.com/oneiro-lab/morpheus/pkg/utils/logging"
)

// Memories orchestrates the create-memory pipeline and converts repository
// errors into Outcome envelopes. It holds no per-entry state; every call is
// independent and safe to run concurrently.
type Memories struct {
	repo      interfaces.Repository
	insight   *insight.Service
	telegraph *telegraph.Service
}

func NewMemories(repo interfaces.Repository, insightSvc *insight.Service, telegraphSvc *telegraph.Service) *Memories {
	return &Memories{
		repo:      repo,
		insight:   insightSvc,
		telegraph: telegraphSvc,
	}
}

// Create runs the three-stage pipeline: generate commentary, persist the
// entry, then publish a public page. Generate and persist failures abort
// the pipeline; publish and the trailing link update are best-effort.
func (uc *Memories) Create(ctx context.Context, input *model.MemoryInput) *model.Outcome[model.Memory] {
	logger := logging.From(ctx)
	input.Normalize()

	// Stage 0: generate. Without even an attempted commentary the entry is
	// not worth storing, so a failure here persists nothing.
	generated := uc.insight.Generate(ctx, input)
	if !generated.Success {
		return model.Fail[model.Memory](generated.Message)
	}

	// Stage 1: persist. The generated commentary is lost on failure; a
	// retry simply regenerates it.
	created, err := uc.repo.Memory().Create(ctx, generated.Content)
	if err != nil {
		return model.Fail[model.Memory]("failed to save memory: " + err.Error())
	}

	// Stage 2: publish, best-effort. From here on the create has already
	// succeeded; a missing public link never fails the operation.
	if uc.telegraph == nil {
		return model.OK("memory saved", created)
	}

	published := uc.telegraph.Publish(ctx, created.Title, renderArticle(created))
	if !published.Success {
		logger.Warn("failed to publish memory page, keeping entry without link",
			"id", created.ID, "message", published.Message)
		return model.OK("memory saved", created)
	}

	pageURL := published.Content.URL
	updated, err := uc.repo.Memory().Update(ctx, created.ID, &model.MemoryPatch{TelegraphURL: &pageURL})
	if err != nil {
		logger.Warn("failed to store page URL, keeping entry without link",
			"id", created.ID, "url", pageURL, "error", err.Error())
		return model.OK("memory saved", created)
	}

	return model.OK("memory saved", updated)
}

// Get retrieves a memory. Not-found is a normal failure outcome, not a
// fault.
func (uc *Memories) Get(ctx context.Context, id types.MemoryID) *model.Outcome[model.Memory] {
	m, err := uc.repo.Memory().Get(ctx, id)
	switch {
	case errors.Is(err, types.ErrMemoryNotFound):
		return model.Fail[model.Memory]("memory not found")
	case err != nil:
		return model.Fail[model.Memory]("failed to load memory: " + err.Error())
	}
	return model.OK("memory loaded", m)
}

// Update applies the non-nil fields of patch. An all-nil patch is a no-op
// that returns the record unchanged.
func (uc *Memories) Update(ctx context.Context, id types.MemoryID, patch *model.MemoryPatch) *model.Outcome[model.Memory] {
	m, err := uc.repo.Memory().Update(ctx, id, patch)
	switch {
	case errors.Is(err, types.ErrMemoryNotFound):
		return model.Fail[model.Memory]("memory to update not found")
	case err != nil:
		return model.Fail[model.Memory]("failed to update memory: " + err.Error())
	}
	return model.OK("memory updated", m)
}

// Delete permanently removes a memory. There is no soft delete and no
// recovery.
func (uc *Memories) Delete(ctx context.Context, id types.MemoryID) *model.Outcome[struct{}] {
	err := uc.repo.Memory().Delete(ctx, id)
	switch {
	case errors.Is(err, types.ErrMemoryNotFound):
		return model.Fail[struct{}]("memory to delete not found")
	case err != nil:
		return model.Fail[struct{}]("failed to delete memory: " + err.Error())
	}
	return &model.Outcome[struct{}]{Success: true, Message: "memory deleted"}
}

// renderArticle renders the fixed public-page markup for a memory.
func renderArticle(m *model.Memory) string {
	thoughts := ""
	if m.AIThoughts != nil {
		thoughts = *m.AIThoughts
	}
	return fmt.Sprintf(
		"<p>Memory <code>%d</code></p><h3>%s</h3><p><i>%s</i></p><hr><p>%s</p>",
		m.ID, m.Title, m.Content, thoughts,
	)
}
