package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/oneiro-lab/morpheus/pkg/domain/model"
)

func strPtr(s string) *string { return &s }

func TestMemoryInputValidate(t *testing.T) {
	t.Run("accepts complete input", func(t *testing.T) {
		input := &model.MemoryInput{Title: "Dream A", Content: "I flew over a city"}
		gt.NoError(t, input.Validate())
	})

	t.Run("rejects blank title", func(t *testing.T) {
		input := &model.MemoryInput{Title: "   ", Content: "I flew over a city"}
		gt.Error(t, input.Validate())
	})

	t.Run("rejects blank content", func(t *testing.T) {
		input := &model.MemoryInput{Title: "Dream A", Content: ""}
		gt.Error(t, input.Validate())
	})
}

func TestMemoryInputNormalize(t *testing.T) {
	t.Run("fills missing created_at", func(t *testing.T) {
		input := &model.MemoryInput{Title: "Dream A", Content: "I flew over a city"}
		input.Normalize()
		gt.Bool(t, input.CreatedAt.IsZero()).False()
	})

	t.Run("keeps caller-provided created_at", func(t *testing.T) {
		at := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
		input := &model.MemoryInput{Title: "Dream A", Content: "I flew over a city", CreatedAt: at}
		input.Normalize()
		gt.Bool(t, input.CreatedAt.Equal(at)).True()
	})
}

func TestMemoryInputDraft(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	input := &model.MemoryInput{Title: "Dream A", Content: "I flew over a city", CreatedAt: at}

	draft := input.Draft()
	gt.Value(t, draft.Title).Equal("Dream A")
	gt.Value(t, draft.Content).Equal("I flew over a city")
	gt.Value(t, draft.AIThoughts).Nil()
	gt.Value(t, draft.TelegraphURL).Nil()
	gt.Bool(t, draft.CreatedAt.Equal(at)).True()
}

func TestMemoryPatchIsEmpty(t *testing.T) {
	t.Run("nil patch is empty", func(t *testing.T) {
		var p *model.MemoryPatch
		gt.Bool(t, p.IsEmpty()).True()
	})

	t.Run("zero patch is empty", func(t *testing.T) {
		gt.Bool(t, (&model.MemoryPatch{}).IsEmpty()).True()
	})

	t.Run("patch with one field is not empty", func(t *testing.T) {
		p := &model.MemoryPatch{TelegraphURL: strPtr("https://telegra.ph/Dream-A-01")}
		gt.Bool(t, p.IsEmpty()).False()
	})
}

func TestMemoryPatchApply(t *testing.T) {
	newMemory := func() *model.Memory {
		return &model.Memory{
			ID:         1,
			Title:      "Dream A",
			Content:    "I flew over a city",
			AIThoughts: strPtr("Interesting symbolism"),
			CreatedAt:  time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC),
		}
	}

	t.Run("overwrites only non-nil fields", func(t *testing.T) {
		m := newMemory()
		p := &model.MemoryPatch{Title: strPtr("Dream A (revised)")}
		p.Apply(m)

		gt.Value(t, m.Title).Equal("Dream A (revised)")
		gt.Value(t, m.Content).Equal("I flew over a city")
		gt.Value(t, *m.AIThoughts).Equal("Interesting symbolism")
		gt.Value(t, m.TelegraphURL).Nil()
	})

	t.Run("empty patch changes nothing", func(t *testing.T) {
		m := newMemory()
		(&model.MemoryPatch{}).Apply(m)
		gt.Value(t, *m).Equal(*newMemory())
	})

	t.Run("never touches ID and created_at", func(t *testing.T) {
		m := newMemory()
		p := &model.MemoryPatch{
			Title:        strPtr("x"),
			Content:      strPtr("y"),
			AIThoughts:   strPtr("z"),
			TelegraphURL: strPtr("https://telegra.ph/x"),
		}
		p.Apply(m)

		gt.Value(t, m.ID).Equal(newMemory().ID)
		gt.Bool(t, m.CreatedAt.Equal(newMemory().CreatedAt)).True()
	})
}
