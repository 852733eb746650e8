package history

import (
	"encoding/json"
	"time"
)

// EntryType identifies the kind of content an Entry carries.
type EntryType string

const (
	// EntryMessage is a conversational entry such as user input or a
	// recorded tool call.
	EntryMessage EntryType = "message"

	// EntryCustom is an extension-written entry carrying an opaque
	// payload under a tag. Custom entries participate in branch
	// ancestry like any other entry but are ignored when rendering
	// the conversation.
	EntryCustom EntryType = "custom"
)

// Well-known roles for message entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Entry is a single node in a session's history tree. Entries are
// immutable once appended: there is no API to edit or delete one.
type Entry struct {
	ID       string    `json:"id"`
	ParentID string    `json:"parent_id,omitempty"`
	Type     EntryType `json:"type"`

	// Role and Text are populated for EntryMessage entries.
	Role string `json:"role,omitempty"`
	Text string `json:"text,omitempty"`

	// CustomType and Payload are populated for EntryCustom entries.
	// CustomType is the tag under which an extension filed the entry;
	// Payload is the raw JSON it stored.
	CustomType string          `json:"custom_type,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsCustom reports whether the entry is an extension-written custom
// entry with the given tag.
func (e *Entry) IsCustom(tag string) bool {
	return e.Type == EntryCustom && e.CustomType == tag
}

// clone returns a value copy of the entry. Payload bytes are copied so
// the clone shares no mutable state with the original.
func (e *Entry) clone() *Entry {
	c := *e
	if e.Payload != nil {
		c.Payload = make(json.RawMessage, len(e.Payload))
		copy(c.Payload, e.Payload)
	}
	return &c
}
