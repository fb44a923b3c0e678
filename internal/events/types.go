package events

import "time"

// Type identifies event categories
type Type string

const (
	TypeStateChanged      Type = "state_changed"
	TypeHistoryRecorded   Type = "history_recorded"
	TypeError             Type = "error"
	TypeConflictPrompt    Type = "conflict_prompt"
	TypeReputationChanged Type = "reputation_changed"
)

// Event is the base event structure
type Event struct {
	Type      Type
	Timestamp time.Time
	Data      map[string]any
}

// Eventer interface for typed events
type Eventer interface {
	ToEvent() Event
}

// StateChangedEvent when the revert workflow changes state
type StateChangedEvent struct {
	From      string
	To        string
	Page      string
	Timestamp time.Time
}

func (e StateChangedEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeStateChanged,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"from": e.From,
			"to":   e.To,
			"page": e.Page,
		},
	}
}

// HistoryRecordedEvent when a revert produces a history record
type HistoryRecordedEvent struct {
	Target    string
	Kind      string // rollback, manual-revert
	Result    string
	Timestamp time.Time
}

func (e HistoryRecordedEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeHistoryRecorded,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"target": e.Target,
			"kind":   e.Kind,
			"result": e.Result,
		},
	}
}

// ErrorEvent for errors
type ErrorEvent struct {
	Page      string
	Error     error
	Fatal     bool
	Timestamp time.Time
}

func (e ErrorEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	errMsg := ""
	if e.Error != nil {
		errMsg = e.Error.Error()
	}
	return Event{
		Type:      TypeError,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"page":  e.Page,
			"error": errMsg,
			"fatal": e.Fatal,
		},
	}
}

// ConflictPromptEvent when a conflict prompt was shown to the user
type ConflictPromptEvent struct {
	Page      string
	Kind      string // newer-edits, newer-by-other, multiple-by-same
	Accepted  bool
	Timestamp time.Time
}

func (e ConflictPromptEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeConflictPrompt,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"page":     e.Page,
			"kind":     e.Kind,
			"accepted": e.Accepted,
		},
	}
}

// ReputationChangedEvent when a user's badness score is adjusted
type ReputationChangedEvent struct {
	User      string
	Delta     int
	Score     int
	Timestamp time.Time
}

func (e ReputationChangedEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeReputationChanged,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"user":  e.User,
			"delta": e.Delta,
			"score": e.Score,
		},
	}
}
