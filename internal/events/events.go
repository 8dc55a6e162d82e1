// Package events provides an event system for simulation progress notifications.
package events

import "time"

// EventType represents the type of event
type EventType string

const (
	// EventRunStarted is emitted when a scenario engine begins generating a population
	EventRunStarted EventType = "run_started"
	// EventSystemCompleted is emitted after each system of a population is generated
	EventSystemCompleted EventType = "system_completed"
	// EventRunCompleted is emitted when a population and its histograms are ready
	EventRunCompleted EventType = "run_completed"
	// EventRunFailed is emitted when a run stops with an error or cancellation
	EventRunFailed EventType = "run_failed"
	// EventSweepPoint is emitted when one probability of a sweep finishes
	EventSweepPoint EventType = "sweep_point"
)

// Event represents a simulation event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data.
// Fields that can legitimately be zero are pointers so that a zero value is
// still sent while fields that do not apply to the event are omitted.
type EventData struct {
	Scenario    string   `json:"scenario,omitempty"`
	Systems     int      `json:"systems,omitempty"`
	Attacks     int      `json:"attacks,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
	System      *int     `json:"system,omitempty"`
	Terminal    *int     `json:"terminal,omitempty"`
	Survivors   *int     `json:"survivors,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func ref[T any](v T) *T {
	return &v
}

// NewRunStartedEvent creates a run started event
func NewRunStartedEvent(runID, scenario string, systems, attacks int, probability float64) Event {
	return Event{
		Type:      EventRunStarted,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			Scenario:    scenario,
			Systems:     systems,
			Attacks:     attacks,
			Probability: ref(probability),
		},
	}
}

// NewSystemCompletedEvent creates an event for one generated system
func NewSystemCompletedEvent(runID string, system, terminal int) Event {
	return Event{
		Type:      EventSystemCompleted,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			System:   ref(system),
			Terminal: ref(terminal),
		},
	}
}

// NewRunCompletedEvent creates a run completed event
func NewRunCompletedEvent(runID, scenario string, systems, survivors int) Event {
	return Event{
		Type:      EventRunCompleted,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			Scenario:  scenario,
			Systems:   systems,
			Survivors: ref(survivors),
		},
	}
}

// NewRunFailedEvent creates a run failed event
func NewRunFailedEvent(runID string, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventRunFailed,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			Error: errMsg,
		},
	}
}

// NewSweepPointEvent creates an event for a finished sweep probability
func NewSweepPointEvent(runID string, probability float64, survivors int) Event {
	return Event{
		Type:      EventSweepPoint,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			Probability: ref(probability),
			Survivors:   ref(survivors),
		},
	}
}
