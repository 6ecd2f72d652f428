// Package pipeline applies the conversation transformations: sender and
// keyword filtering, blacklist redaction and report aggregation.
//
// Stages run in a fixed order and each returns a new Conversation; the input
// conversation is never mutated.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/john/chatexport/internal/message"
)

// Kind identifies one of the pipeline stages
type Kind int

const (
	KindSenderFilter Kind = iota
	KindKeywordFilter
	KindBlacklist
	KindReport
)

func (k Kind) String() string {
	switch k {
	case KindSenderFilter:
		return "sender_filter"
	case KindKeywordFilter:
		return "keyword_filter"
	case KindBlacklist:
		return "blacklist"
	case KindReport:
		return "report"
	default:
		return fmt.Sprintf("stage(%d)", int(k))
	}
}

// Stage is one transformation step. Only the stages in this package
// implement it.
type Stage interface {
	Kind() Kind
	Apply(conv message.Conversation) (message.Conversation, error)

	sealed()
}

// StageError reports which stage failed
type StageError struct {
	Stage Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// errReported is returned when a message-level stage receives a conversation
// that has already been turned into a report
var errReported = errors.New("conversation is already in report view")
