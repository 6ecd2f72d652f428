package pipeline

import (
	"sort"

	"github.com/john/chatexport/internal/message"
	"github.com/john/chatexport/internal/textutil"
)

// Report replaces the message view with per-sender statistics. It is the
// last stage; nothing message-level can run after it.
type Report struct{}

// NewReport creates the report stage
func NewReport() *Report {
	return &Report{}
}

func (r *Report) Kind() Kind { return KindReport }

func (r *Report) sealed() {}

// Apply groups messages by sender. Users are ordered by message count,
// most active first; ties keep first-appearance order.
func (r *Report) Apply(conv message.Conversation) (message.Conversation, error) {
	if conv.Reported() {
		return message.Conversation{}, errReported
	}

	users := make([]message.User, 0)
	index := make(map[string]int)
	for _, m := range conv.Messages {
		i, ok := index[m.Sender]
		if !ok {
			i = len(users)
			index[m.Sender] = i
			users = append(users, message.User{
				Name:      m.Sender,
				WordCount: make(map[string]int),
			})
		}

		users[i].MessageCount++
		for _, tok := range textutil.Tokens(m.Content) {
			users[i].WordCount[tok]++
		}
	}

	sort.SliceStable(users, func(a, b int) bool {
		return users[a].MessageCount > users[b].MessageCount
	})

	return message.Conversation{Name: conv.Name, Users: users}, nil
}
