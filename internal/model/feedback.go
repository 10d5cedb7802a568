package model

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackStatus string

const (
	FeedbackStatusOpen       FeedbackStatus = "open"
	FeedbackStatusPlanned    FeedbackStatus = "planned"
	FeedbackStatusInProgress FeedbackStatus = "in_progress"
	FeedbackStatusDone       FeedbackStatus = "done"
)

type Feedback struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	UserID      uuid.UUID      `json:"user_id" db:"user_id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Category    string         `json:"category" db:"category"`
	Status      FeedbackStatus `json:"status" db:"status"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

type FeedbackWithVotes struct {
	Feedback
	Votes int  `json:"votes" db:"votes"`
	Voted bool `json:"voted" db:"voted"`
}
