// Package domain defines the learning-platform entities persisted through
// the storage layer.
package domain

import "time"

// Collection names used across repositories and migrations.
const (
	CollectionAccounts  = "accounts"
	CollectionProgress  = "progress"
	CollectionMissions  = "missions"
	CollectionAnalytics = "analytics"
)

// Entity is implemented by every persisted type.
type Entity interface {
	EntityID() string
}

// Account is a platform user.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Persona     string    `json:"persona"`
	ExamTargets []string  `json:"exam_targets,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastActive  time.Time `json:"last_active"`
}

func (a Account) EntityID() string { return a.ID }

// ProgressRecord tracks an account's progress on a single topic.
// Completion is a percentage in [0, 100].
type ProgressRecord struct {
	ID               string    `json:"id"`
	AccountID        string    `json:"account_id"`
	TopicID          string    `json:"topic_id"`
	Completion       float64   `json:"completion"`
	Streak           int       `json:"streak"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
	SolvedCount      int       `json:"solved_count"`
	AttemptedCount   int       `json:"attempted_count"`
	MasteryScore     float64   `json:"mastery_score"`
	LastStudied      time.Time `json:"last_studied"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (p ProgressRecord) EntityID() string { return p.ID }

// Milestone is one step inside a mission.
type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Mission is a structured learning goal made of milestones. Progress is the
// completed-milestone percentage in [0, 100], recomputed on every milestone
// completion.
type Mission struct {
	ID         string      `json:"id"`
	AccountID  string      `json:"account_id"`
	Title      string      `json:"title"`
	Status     string      `json:"status"`
	Progress   float64     `json:"progress"`
	TargetDate *time.Time  `json:"target_date,omitempty"`
	Milestones []Milestone `json:"milestones"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (m Mission) EntityID() string { return m.ID }

// Mission statuses.
const (
	MissionActive    = "active"
	MissionCompleted = "completed"
	MissionAbandoned = "abandoned"
)

// AnalyticsEvent is a single tracked user action.
type AnalyticsEvent struct {
	ID        string         `json:"id"`
	AccountID string         `json:"account_id"`
	SessionID string         `json:"session_id"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e AnalyticsEvent) EntityID() string { return e.ID }
