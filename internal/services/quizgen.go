package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studydesk-backend/internal/models"
)

var (
	ErrDownloadFailed  = errors.New("failed to download PDF")
	ErrExtractionEmpty = errors.New("failed to extract text from PDF")
	ErrSynthesisEmpty  = errors.New("failed to generate questions")
)

// Fetcher retrieves the raw document bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TextExtractor turns a PDF into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// QuestionSynthesizer returns the model's raw JSON answer for the given text.
type QuestionSynthesizer interface {
	SynthesizeQuestions(ctx context.Context, text string, cfg models.GenerationConfig) (string, error)
}

// QuizGenerator runs fetch → extract → synthesize → parse, strictly in that order.
type QuizGenerator struct {
	fetcher     Fetcher
	extractor   TextExtractor
	synthesizer QuestionSynthesizer
}

func NewQuizGenerator(fetcher Fetcher, extractor TextExtractor, synthesizer QuestionSynthesizer) *QuizGenerator {
	return &QuizGenerator{
		fetcher:     fetcher,
		extractor:   extractor,
		synthesizer: synthesizer,
	}
}

// Generate never retries. Failures wrap ErrDownloadFailed, ErrExtractionEmpty or
// ErrSynthesisEmpty where one of those applies; anything else is unclassified.
func (g *QuizGenerator) Generate(ctx context.Context, pdfURL string, cfg models.GenerationConfig) ([]models.Question, error) {
	pdf, err := g.fetcher.Fetch(ctx, pdfURL)
	if err != nil {
		return nil, err
	}

	text, err := g.extractor.ExtractText(ctx, pdf)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrExtractionEmpty
	}

	raw, err := g.synthesizer.SynthesizeQuestions(ctx, text, cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrSynthesisEmpty
	}

	return ParseQuestions(raw)
}

// ParseQuestions decodes the synthesizer output. An object without a "questions"
// field yields an empty slice, not an error. A bare array is taken as the questions.
func ParseQuestions(raw string) ([]models.Question, error) {
	cleaned := stripCodeFence(raw)

	if strings.HasPrefix(cleaned, "[") {
		var questions []models.Question
		if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
			return nil, fmt.Errorf("failed to parse generated questions: %w", err)
		}
		return nonNil(questions), nil
	}

	var envelope struct {
		Questions []models.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}

	return nonNil(envelope.Questions), nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func nonNil(q []models.Question) []models.Question {
	if q == nil {
		return []models.Question{}
	}
	return q
}
