package events

import (
	"github.com/princekumarofficial/videos-service/internal/types"
)

// Publisher interface for publishing events
type Publisher interface {
	PublishVideoCreated(video types.Video)
	PublishVideoUpdated(video types.Video)
	PublishVideoDeleted(id int64)
}

// EventPublisher implements the Publisher interface
type EventPublisher struct {
	hub WebSocketHub
}

// WebSocketHub interface for the WebSocket hub
type WebSocketHub interface {
	Broadcast(event *types.Event)
	GetClientCount() int
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{
		hub: hub,
	}
}

func (p *EventPublisher) PublishVideoCreated(video types.Video) {
	p.publish(types.EventVideoCreated, video)
}

func (p *EventPublisher) PublishVideoUpdated(video types.Video) {
	p.publish(types.EventVideoUpdated, video)
}

func (p *EventPublisher) PublishVideoDeleted(id int64) {
	p.publish(types.EventVideoDeleted, &types.VideoDeletedEvent{ID: id})
}

func (p *EventPublisher) publish(eventType types.EventType, data interface{}) {
	// Nobody is listening
	if p.hub.GetClientCount() == 0 {
		return
	}

	p.hub.Broadcast(types.NewEvent(eventType, data))
}

// Discard drops every event. Used when no change feed is wired.
type Discard struct{}

func (Discard) PublishVideoCreated(types.Video) {}
func (Discard) PublishVideoUpdated(types.Video) {}
func (Discard) PublishVideoDeleted(int64)       {}
