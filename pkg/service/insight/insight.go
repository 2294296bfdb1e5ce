package insight

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/m-mizutani/gollem"
	"github.com/oneiro-lab/morpheus/pkg/domain/model"
	"github.com/oneiro-lab/morpheus/pkg/utils/logging"
)

//go:embed prompt/dream_insight.md
var insightPromptTmpl string

var insightPrompt = template.Must(template.New("dream_insight").Parse(insightPromptTmpl))

// Service is the gateway to the generative language model. It issues exactly
// one model call per Generate invocation and never retries; retries, if any,
// belong to the caller.
type Service struct {
	llm gollem.LLMClient
}

// New creates an insight service on top of the given LLM client.
func New(llm gollem.LLMClient) *Service {
	return &Service{llm: llm}
}

// Generate asks the model for commentary on a single memory. Every transport
// or response fault is converted into a failure outcome whose content still
// echoes the input with nil AIThoughts, so the caller can decide whether to
// proceed without commentary.
func (s *Service) Generate(ctx context.Context, input *model.MemoryInput) *model.Outcome[model.MemoryDraft] {
	logger := logging.From(ctx)
	draft := input.Draft()

	prompt, err := buildPrompt(input)
	if err != nil {
		return model.FailWith("failed to build insight prompt: "+err.Error(), draft)
	}

	session, err := s.llm.NewSession(ctx)
	if err != nil {
		return model.FailWith("failed to open language model session: "+err.Error(), draft)
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		logger.Error("language model call failed", "title", input.Title, "error", err.Error())
		return model.FailWith("failed to generate commentary: "+err.Error(), draft)
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	if text == "" {
		// An empty response is unusual but not a failure; the entry is still
		// worth keeping.
		logger.Warn("language model returned no text", "title", input.Title)
	} else {
		draft.AIThoughts = &text
	}

	logger.Debug("generated commentary", "title", input.Title, "length", len(text))
	return model.OK("generated commentary", draft)
}

func buildPrompt(input *model.MemoryInput) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := insightPrompt.Execute(&buf, map[string]string{"MemoryData": string(data)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
