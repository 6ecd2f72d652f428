package pipeline

import (
	"github.com/john/chatexport/internal/message"
	"github.com/john/chatexport/internal/textutil"
)

// SenderFilter keeps only the messages sent by one sender (exact match)
type SenderFilter struct {
	sender string
}

// NewSenderFilter creates a filter for sender
func NewSenderFilter(sender string) *SenderFilter {
	return &SenderFilter{sender: sender}
}

func (f *SenderFilter) Kind() Kind { return KindSenderFilter }

func (f *SenderFilter) sealed() {}

// Apply returns the sub-sequence of messages from the sender, order preserved
func (f *SenderFilter) Apply(conv message.Conversation) (message.Conversation, error) {
	if conv.Reported() {
		return message.Conversation{}, errReported
	}
	return conv.WithMessages(keep(conv.Messages, func(m message.Message) bool {
		return m.Sender == f.sender
	})), nil
}

// KeywordFilter keeps only the messages whose content contains a keyword,
// ignoring case
type KeywordFilter struct {
	keyword string
}

// NewKeywordFilter creates a filter for keyword, which must not be empty
func NewKeywordFilter(keyword string) *KeywordFilter {
	return &KeywordFilter{keyword: keyword}
}

func (f *KeywordFilter) Kind() Kind { return KindKeywordFilter }

func (f *KeywordFilter) sealed() {}

// Apply returns the sub-sequence of messages mentioning the keyword
func (f *KeywordFilter) Apply(conv message.Conversation) (message.Conversation, error) {
	if conv.Reported() {
		return message.Conversation{}, errReported
	}
	return conv.WithMessages(keep(conv.Messages, func(m message.Message) bool {
		return textutil.ContainsFold(m.Content, f.keyword)
	})), nil
}

// keep returns a new slice with the messages matching pred
func keep(msgs []message.Message, pred func(message.Message) bool) []message.Message {
	out := make([]message.Message, 0, len(msgs))
	for _, m := range msgs {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}
