// Package events carries catalog change notifications from the album and
// user services to the WebSocket hub, MQTT and InfluxDB.
//
// Delivery is best effort. A failing sink is reported to the caller but
// never rolls back the change that produced the event.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Type names a catalog change.
type Type string

// Event types.
const (
	AlbumCreated    Type = "album.created"
	AlbumUpdated    Type = "album.updated"
	AlbumDeleted    Type = "album.deleted"
	UserRoleChanged Type = "user.role_changed"
)

// Event is a single catalog change.
type Event struct {
	Type      Type      `json:"type"`
	AlbumID   int64     `json:"albumId,omitempty"`
	Title     string    `json:"title,omitempty"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Role      string    `json:"role,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IsAlbumEvent reports whether e concerns an album.
func (e Event) IsAlbumEvent() bool {
	switch e.Type {
	case AlbumCreated, AlbumUpdated, AlbumDeleted:
		return true
	}
	return false
}

// Publisher accepts events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, e Event) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Nop discards every event.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, Event) error { return nil }

// Dispatcher fans an event out to every registered sink. All sinks are
// attempted even when one fails.
type Dispatcher struct {
	sinks []namedSink
	now   func() time.Time
}

type namedSink struct {
	name string
	pub  Publisher
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{now: time.Now}
}

// Add registers a sink under name. Nil sinks are ignored.
func (d *Dispatcher) Add(name string, p Publisher) *Dispatcher {
	if p != nil {
		d.sinks = append(d.sinks, namedSink{name: name, pub: p})
	}
	return d
}

// Len returns the number of registered sinks.
func (d *Dispatcher) Len() int {
	return len(d.sinks)
}

// Publish stamps e if needed and delivers it to every sink.
func (d *Dispatcher) Publish(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = d.now().UTC()
	}

	var errs []error
	for _, s := range d.sinks {
		if err := s.pub.Publish(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
