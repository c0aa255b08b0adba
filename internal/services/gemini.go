package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"studydesk-backend/internal/logger"
	"studydesk-backend/internal/models"
)

const extractInstruction = "Extract the text content from this document. Return plain text only, preserving the reading order, without commentary."

type GeminiOptions struct {
	APIKey           string
	Model            string
	ConcurrentReqs   int
	ExtractMaxTokens int
	Temperature      float64
}

// GeminiService is both the document extractor and the question synthesizer.
type GeminiService struct {
	client       *genai.Client
	extractModel *genai.GenerativeModel
	quizModel    *genai.GenerativeModel
	rateChan     chan struct{} // Token bucket
}

func NewGeminiService(ctx context.Context, opts GeminiOptions) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	extractModel := client.GenerativeModel(opts.Model)
	extractModel.SetTemperature(0)
	extractModel.SetMaxOutputTokens(int32(opts.ExtractMaxTokens))

	quizModel := client.GenerativeModel(opts.Model)
	quizModel.SetTemperature(float32(opts.Temperature))
	quizModel.ResponseMIMEType = "application/json"
	quizModel.ResponseSchema = quizResponseSchema()

	concurrent := opts.ConcurrentReqs
	if concurrent < 1 {
		concurrent = 1
	}
	rateChan := make(chan struct{}, concurrent)
	for i := 0; i < concurrent; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:       client,
		extractModel: extractModel,
		quizModel:    quizModel,
		rateChan:     rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// ExtractText sends the whole document inline in one request. No chunking.
func (s *GeminiService) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	resp, err := s.extractModel.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: pdf},
		genai.Text(extractInstruction),
	)
	if err != nil {
		return "", fmt.Errorf("Gemini extraction error: %w", err)
	}
	logFinishReasons("extract", resp)

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", ErrExtractionEmpty
	}
	return text, nil
}

// SynthesizeQuestions returns the model's JSON text unparsed.
func (s *GeminiService) SynthesizeQuestions(ctx context.Context, text string, cfg models.GenerationConfig) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	resp, err := s.quizModel.GenerateContent(ctx, genai.Text(buildQuizPrompt(cfg, text)))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	logFinishReasons("synthesize", resp)

	raw := strings.TrimSpace(extractText(resp))
	if raw == "" {
		return "", ErrSynthesisEmpty
	}
	return raw, nil
}

func logFinishReasons(stage string, resp *genai.GenerateContentResponse) {
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			logger.Get().Warn("Gemini candidate did not finish cleanly",
				zap.String("stage", stage),
				zap.Int("candidate", i),
				zap.String("finish_reason", cand.FinishReason.String()),
			)
		}
	}
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func buildQuizPrompt(cfg models.GenerationConfig, content string) string {
	var b strings.Builder

	b.WriteString("You are an expert educational assessor. Generate multiple-choice quiz questions based on the following content.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.\n\n")

	b.WriteString(fmt.Sprintf("Generate exactly %d questions.\n", cfg.QuestionCount))
	b.WriteString(fmt.Sprintf("Difficulty: %s\n", cfg.DifficultyLevel))

	switch cfg.DifficultyLevel {
	case "easy":
		b.WriteString("Easy = direct recall from text.\n")
	case "medium":
		b.WriteString("Medium = application of concepts.\n")
	case "hard":
		b.WriteString("Hard = analysis, synthesis, or inference beyond what is explicitly stated.\n")
	case "mixed":
		b.WriteString("Mixed = a spread of recall, application and analysis questions.\n")
	}

	b.WriteString(`
Response shape:
{"questions": [{"id": "q-1", "text": "string", "options": [{"id": "q-1-a", "text": "string", "isCorrect": false}, {"id": "q-1-b", "text": "string", "isCorrect": true}, {"id": "q-1-c", "text": "string", "isCorrect": false}, {"id": "q-1-d", "text": "string", "isCorrect": false}], "explanation": "string"}]}

Rules: number questions q-1, q-2, ... in order; every question has exactly 4 options with ids suffixed a, b, c, d; exactly one option has "isCorrect": true.
`)

	b.WriteString("\n---CONTENT---\n")
	b.WriteString(content)
	b.WriteString("\n---END---\n")

	return b.String()
}

func quizResponseSchema() *genai.Schema {
	optionSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":        {Type: genai.TypeString},
			"text":      {Type: genai.TypeString},
			"isCorrect": {Type: genai.TypeBoolean},
		},
		Required: []string{"id", "text", "isCorrect"},
	}
	question := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":          {Type: genai.TypeString},
			"text":        {Type: genai.TypeString},
			"options":     {Type: genai.TypeArray, Items: optionSchema},
			"explanation": {Type: genai.TypeString},
		},
		Required: []string{"id", "text", "options", "explanation"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"questions": {Type: genai.TypeArray, Items: question},
		},
		Required: []string{"questions"},
	}
}
