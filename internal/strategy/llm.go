package strategy

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/linkmill/linkmill/internal/classify"
	"github.com/linkmill/linkmill/internal/extract"
	"github.com/linkmill/linkmill/internal/fetch"
	"github.com/linkmill/linkmill/internal/sanitize"
)

// ChatClient is the narrow slice of the OpenAI-compatible client the salvage
// strategy needs, so tests can inject a fake.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const salvageSystemPrompt = "You receive the raw HTML of a web page. Return only the readable " +
	"article text as plain paragraphs, preserving headings as Markdown. Do not summarize, " +
	"comment, or add anything that is not in the page."

// LLMSalvageStrategy sends raw page HTML to an OpenAI-compatible model and
// asks for the readable text. It sits last in the generic-page chain and is
// only registered when a model is configured.
type LLMSalvageStrategy struct {
	Client *fetch.Client
	AI     ChatClient
	Model  string
	// MaxHTMLBytes truncates the page before prompting. Zero means default
	// (64 KiB).
	MaxHTMLBytes int
}

func (s *LLMSalvageStrategy) Name() string { return "LLMSalvage" }

func (s *LLMSalvageStrategy) Attempt(ctx context.Context, rawURL string) Outcome {
	cleanURL := sanitize.CleanURL(rawURL)
	res, err := s.Client.GetWithHeaders(ctx, cleanURL, fetch.DefaultProfiles()[0].Headers())
	if err != nil {
		return Retryable(fmt.Sprintf("page fetch failed: %v", err))
	}

	max := s.MaxHTMLBytes
	if max <= 0 {
		max = 64 << 10
	}
	raw := res.Body
	var warnings []string
	if len(raw) > max {
		raw = raw[:max]
		warnings = append(warnings, "page HTML truncated before model extraction")
	}

	resp, err := s.AI.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: salvageSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(raw)},
		},
	})
	if err != nil {
		return Retryable(fmt.Sprintf("model extraction failed: %v", err))
	}
	if len(resp.Choices) == 0 {
		return Retryable("model returned no choices")
	}
	body := sanitize.Text(resp.Choices[0].Message.Content)
	if body == "" {
		return Retryable("model returned empty extraction")
	}
	return Success(Result{
		Kind:         classify.KindGenericPage,
		Title:        extract.Title(res.Body),
		Body:         body,
		SourceURL:    rawURL,
		StrategyUsed: s.Name(),
		Warnings:     append(warnings, "content extracted by language model"),
	})
}
