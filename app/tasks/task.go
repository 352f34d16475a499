package tasks

import (
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypePollFeed   TaskType = "poll_feed"
	TaskTypeManualPoll TaskType = "manual_poll"
)

type Task struct {
	ID        string
	Type      TaskType
	FeedURL   string
	StartedAt *time.Time
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, feedURL string) Task {
	return Task{
		ID:      uuid.NewString(),
		Type:    taskType,
		FeedURL: feedURL,
	}
}

// CycleSummary describes one poll cycle.
type CycleSummary struct {
	TaskID    string        `json:"task_id"`
	Trigger   TaskType      `json:"trigger"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Fetched   int           `json:"fetched"`
	New       int           `json:"new"`
	Published int           `json:"published"`
	Failed    int           `json:"failed"`
	NotFound  int           `json:"not_found"`
	Error     string        `json:"error,omitempty"`
}

func (s CycleSummary) result() string {
	switch {
	case s.Error != "":
		return "fetch_failed"
	case s.Failed > 0:
		return "partial"
	default:
		return "success"
	}
}
