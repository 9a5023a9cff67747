package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventVideoCreated EventType = "video.created"
	EventVideoUpdated EventType = "video.updated"
	EventVideoDeleted EventType = "video.deleted"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// VideoDeletedEvent carries the id of a removed video
type VideoDeletedEvent struct {
	ID int64 `json:"id"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
