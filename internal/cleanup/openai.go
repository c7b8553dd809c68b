// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cleanup

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

const cleanupPrompt = "Fix spacing, hyphenation, and line-break artifacts in the user's text. " +
	"Keep every line, heading, and reference in its original order and wording. " +
	"Return only the corrected text."

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider requires cfg.APIKey. cfg.BaseURL points the client at
// any OpenAI-compatible server.
func NewOpenAIProvider(cfg types.CleanupConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return types.CleanupOpenAI }

// Clean implements Provider.
func (p *OpenAIProvider) Clean(ctx context.Context, text string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: cleanupPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
