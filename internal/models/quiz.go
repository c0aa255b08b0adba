package models

import "encoding/json"

// GenerateQuizRequest is the body of POST /api/generate-quiz.
type GenerateQuizRequest struct {
	PDFURL string            `json:"pdfUrl"`
	Config *GenerationConfig `json:"config"`
}

type GenerationConfig struct {
	QuestionCount   int    `json:"questionCount"`
	DifficultyLevel string `json:"difficultyLevel"`
}

// Question ids follow "q-<n>", option ids "q-<n>-<a|b|c|d>".
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Options     []Option `json:"options"`
	Explanation string   `json:"explanation"`
}

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type GenerateQuizResponse struct {
	Questions []Question `json:"questions"`
}

// CorrectCount returns how many options are flagged correct.
func (q Question) CorrectCount() int {
	n := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

// MessageResponse is the JSON error/info body used across the API.
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// rawGenerateQuizRequest keeps config undecoded so form bodies can carry it as a JSON string.
type rawGenerateQuizRequest struct {
	PDFURL string          `json:"pdfUrl"`
	Config json.RawMessage `json:"config"`
}

// DecodeConfig parses a config value that is either a JSON object or a JSON string holding one.
func DecodeConfig(raw json.RawMessage) (*GenerationConfig, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		raw = json.RawMessage(s)
	}
	var cfg GenerationConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UnmarshalJSON accepts config both as an object and as a JSON-encoded string.
func (r *GenerateQuizRequest) UnmarshalJSON(data []byte) error {
	var raw rawGenerateQuizRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cfg, err := DecodeConfig(raw.Config)
	if err != nil {
		return err
	}
	r.PDFURL = raw.PDFURL
	r.Config = cfg
	return nil
}
