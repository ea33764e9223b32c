package service

import (
	"context"
	"fmt"
	"strings"

	"llm-chat-be/internal/constant"
	"llm-chat-be/pkg/llm"
)

// TitleGenerator derives a short session label from the first message of a
// conversation. It always uses its own pinned model, independent of the
// model the user selected for the chat itself.
type TitleGenerator struct {
	llmProvider llm.LLMProvider
	model       string
}

func NewTitleGenerator(llmProvider llm.LLMProvider, model string) *TitleGenerator {
	return &TitleGenerator{
		llmProvider: llmProvider,
		model:       model,
	}
}

func (g *TitleGenerator) Generate(ctx context.Context, seedText string) (string, error) {
	prompt := fmt.Sprintf(constant.TitlePromptTemplate, seedText)

	out, err := g.llmProvider.Generate(ctx, prompt, llm.WithModel(g.model))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}
