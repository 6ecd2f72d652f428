package message

import (
	"encoding/json"
	"time"
)

// Message represents a single line of a chat transcript
type Message struct {
	Timestamp time.Time // Instant the message was sent
	Sender    string    // Sender identifier, never empty
	Content   string    // Message text, verbatim from the transcript
}

// messageJSON is the wire form of a Message
type messageJSON struct {
	Timestamp int64  `json:"timestamp"` // Epoch seconds (UTC, truncated)
	Sender    string `json:"sender"`
	Content   string `json:"content"`
}

// MarshalJSON encodes the timestamp as integer epoch seconds
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		Timestamp: m.Timestamp.Unix(),
		Sender:    m.Sender,
		Content:   m.Content,
	})
}

// User holds per-sender activity statistics produced by report mode
type User struct {
	Name         string         `json:"name"`
	MessageCount int            `json:"messageCount"`
	WordCount    map[string]int `json:"wordCount"`
}

// Conversation is a named, ordered collection of messages. Once a report has
// been generated, Users replaces Messages as the exported view.
type Conversation struct {
	Name     string
	Messages []Message
	Users    []User
}

// Reported reports whether the conversation is in report view
func (c Conversation) Reported() bool {
	return c.Users != nil
}

// Len returns the number of messages in the message view
func (c Conversation) Len() int {
	return len(c.Messages)
}

// WithMessages returns a copy of the conversation holding msgs
func (c Conversation) WithMessages(msgs []Message) Conversation {
	return Conversation{Name: c.Name, Messages: msgs}
}

// MarshalJSON writes {name, messages} or, in report view, {name, users}
func (c Conversation) MarshalJSON() ([]byte, error) {
	if c.Reported() {
		return json.Marshal(struct {
			Name  string `json:"name"`
			Users []User `json:"users"`
		}{c.Name, c.Users})
	}

	msgs := c.Messages
	if msgs == nil {
		msgs = []Message{}
	}
	return json.Marshal(struct {
		Name     string    `json:"name"`
		Messages []Message `json:"messages"`
	}{c.Name, msgs})
}
