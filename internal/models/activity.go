package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActivityQuiz          = "quiz"
	ActivityQuizGenerated = "quiz_generated"
	ActivityFlashcard     = "flashcard"
	ActivityLibrary       = "library"
	ActivityPastQuestion  = "past_question"
)

// ClientActivityTypes are the types a client may record directly.
var ClientActivityTypes = map[string]bool{
	ActivityQuiz:         true,
	ActivityFlashcard:    true,
	ActivityLibrary:      true,
	ActivityPastQuestion: true,
}

type Activity struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	ActivityType string     `json:"activity_type"`
	ResourceID   *uuid.UUID `json:"resource_id,omitempty"`
	Minutes      int        `json:"minutes"`
	Detail       *string    `json:"detail,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type RecordActivityRequest struct {
	ActivityType string  `json:"activity_type"`
	ResourceID   *string `json:"resource_id"`
	Minutes      int     `json:"minutes"`
}

type DashboardStats struct {
	FlashcardDecks     int `json:"flashcard_decks"`
	Resources          int `json:"resources"`
	Courses            int `json:"courses"`
	PastQuestions      int `json:"past_questions_uploaded"`
	QuizzesGenerated   int `json:"quizzes_generated"`
	StudyMinutesWeekly int `json:"study_minutes_weekly"`
	CurrentStreak      int `json:"current_streak"`
}
