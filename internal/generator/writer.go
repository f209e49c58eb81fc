package generator

import (
	"context"
	"strings"
)

// TextGenerator is any model that turns a prompt into text.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ArticleWriter produces a professional article draft for a topic.
type ArticleWriter struct {
	gen TextGenerator
}

func NewArticleWriter(gen TextGenerator) *ArticleWriter {
	return &ArticleWriter{gen: gen}
}

func ArticlePrompt(topic string) string {
	return "Write a professional article about: " + topic
}

func (w *ArticleWriter) Write(ctx context.Context, topic string) (string, error) {
	text, err := w.gen.GenerateText(ctx, ArticlePrompt(topic))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
