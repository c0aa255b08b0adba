package services

import (
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"studydesk-backend/internal/models"
)

func TestBuildQuizPrompt(t *testing.T) {
	prompt := buildQuizPrompt(models.GenerationConfig{QuestionCount: 7, DifficultyLevel: "hard"}, "Mitochondria make ATP.")

	for _, want := range []string{
		"Generate exactly 7 questions.",
		"Difficulty: hard",
		"Hard = analysis",
		`{"questions": [`,
		"Mitochondria make ATP.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}

	if strings.Index(prompt, "---CONTENT---") > strings.Index(prompt, "Mitochondria") {
		t.Fatalf("expected content to follow the content marker")
	}
}

func TestBuildQuizPrompt_UnknownDifficultyPassedThrough(t *testing.T) {
	prompt := buildQuizPrompt(models.GenerationConfig{QuestionCount: 1, DifficultyLevel: "brutal"}, "x")
	if !strings.Contains(prompt, "Difficulty: brutal") {
		t.Fatalf("expected raw difficulty in prompt")
	}
}

func TestExtractText(t *testing.T) {
	if got := extractText(nil); got != "" {
		t.Fatalf("expected empty text for nil response, got %q", got)
	}

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("hello "), genai.Blob{MIMEType: "image/png"}, genai.Text("world")}}},
			{Content: nil},
		},
	}
	if got := extractText(resp); got != "hello world" {
		t.Fatalf("expected joined text parts, got %q", got)
	}
}

func TestQuizResponseSchema(t *testing.T) {
	schema := quizResponseSchema()
	questions, ok := schema.Properties["questions"]
	if !ok || questions.Type != genai.TypeArray {
		t.Fatalf("expected questions array property")
	}
	options := questions.Items.Properties["options"]
	if options == nil || options.Items.Properties["isCorrect"].Type != genai.TypeBoolean {
		t.Fatalf("expected boolean isCorrect on options")
	}
}
