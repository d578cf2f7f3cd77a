package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "albumcatalog"

// Topics builds album catalog MQTT topics under a configurable prefix.
//
//	topics := mqtt.NewTopics("albumcatalog")
//	topics.AlbumEvent("album.created")
//	// Returns: "albumcatalog/events/album/created"
type Topics struct {
	prefix string
}

// NewTopics returns a builder rooted at prefix. Surrounding slashes are
// trimmed and an empty prefix falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the root of every topic.
func (t Topics) Prefix() string {
	if t.prefix == "" {
		return DefaultTopicPrefix
	}
	return t.prefix
}

// AlbumEvent returns the topic for an album change. The "album." part of
// the event type is dropped.
//
// Example: albumcatalog/events/album/deleted
func (t Topics) AlbumEvent(eventType string) string {
	return fmt.Sprintf("%s/events/album/%s", t.Prefix(), strings.TrimPrefix(eventType, "album."))
}

// UserRole returns the topic for a user's role changes.
//
// Example: albumcatalog/events/user/42/role
func (t Topics) UserRole(userID int64) string {
	return fmt.Sprintf("%s/events/user/%d/role", t.Prefix(), userID)
}

// SystemStatus returns the retained online/offline topic.
//
// Example: albumcatalog/system/status
func (t Topics) SystemStatus() string {
	return t.Prefix() + "/system/status"
}
