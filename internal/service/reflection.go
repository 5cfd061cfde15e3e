package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stoicjournal/stoic/internal/llm"
	"github.com/stoicjournal/stoic/internal/validation"
)

var ErrGenerationFailed = errors.New("failed to generate stoic sentence")

const stoicSystemPrompt = "You are a wise Stoic philosopher. Based on the user's reflection, " +
	"generate a single meaningful Stoic sentence that addresses their concerns and goals. " +
	"The sentence should be concise, profound, and directly related to their situation. " +
	`Respond with a JSON object of the form {"sentence": "..."}.`

// Completer is the part of *llm.Client the generator needs.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error)
}

// Reflection is a generated sentence and how long the model call took.
type Reflection struct {
	Sentence   string
	DurationMs int64
}

type GeneratorOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	JSONSchema  bool
}

type ReflectionGenerator struct {
	completer Completer
	opts      GeneratorOptions
	now       func() time.Time
}

func NewReflectionGenerator(completer Completer, opts GeneratorOptions) *ReflectionGenerator {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	return &ReflectionGenerator{
		completer: completer,
		opts:      opts,
		now:       time.Now,
	}
}

// Generate asks the model for one sentence. Every failure is returned as
// ErrGenerationFailed wrapping the cause; nothing is retried.
func (g *ReflectionGenerator) Generate(ctx context.Context, answers validation.CreateEntryInput) (*Reflection, error) {
	req := llm.CompletionRequest{
		Messages: []llm.Message{
			llm.SystemMessage(stoicSystemPrompt),
			llm.UserMessage(userReflectionMessage(answers)),
		},
		Model:       g.opts.Model,
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	}
	if g.opts.JSONSchema {
		req.ResponseFormat = llm.SentenceFormat()
	}

	start := g.now()
	completion, err := g.completer.Complete(ctx, req)
	elapsed := g.now().Sub(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	sentence := extractSentence(completion.Content())
	if sentence == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrGenerationFailed)
	}

	durationMs := elapsed.Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}

	slog.Debug("stoic sentence generated", "duration_ms", durationMs, "model", completion.Model)
	return &Reflection{Sentence: sentence, DurationMs: durationMs}, nil
}

func userReflectionMessage(answers validation.CreateEntryInput) string {
	return fmt.Sprintf("What matters most to me: %s\nMy fears of loss: %s\nMy personal goals: %s",
		answers.WhatMattersMost, answers.FearsOfLoss, answers.PersonalGoals)
}

// extractSentence reads {"sentence": ...} and falls back to the raw text
// when the content is not a JSON object.
func extractSentence(content string) string {
	content = strings.TrimSpace(content)

	var structured struct {
		Sentence string `json:"sentence"`
	}
	if strings.HasPrefix(content, "{") && json.Unmarshal([]byte(content), &structured) == nil {
		return strings.TrimSpace(structured.Sentence)
	}

	return content
}
