package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/john/chatexport/internal/message"
)

// Options selects the stages to run. A zero field disables its stage.
type Options struct {
	FilterUser     string   // Keep only this sender
	FilterKeyword  string   // Keep only messages containing this text
	Blacklist      []string // Words to redact; nil or empty redacts nothing
	Report         bool     // Replace messages with per-sender statistics
	RedactionToken string   // Mask text; defaults to DefaultRedactionToken
}

// Plan returns the enabled stages in execution order: sender filter,
// keyword filter, blacklist, report.
func Plan(opts Options) []Stage {
	var stages []Stage
	if opts.FilterUser != "" {
		stages = append(stages, NewSenderFilter(opts.FilterUser))
	}
	if opts.FilterKeyword != "" {
		stages = append(stages, NewKeywordFilter(opts.FilterKeyword))
	}
	if opts.Blacklist != nil {
		stages = append(stages, NewBlacklist(opts.Blacklist, opts.RedactionToken))
	}
	if opts.Report {
		stages = append(stages, NewReport())
	}
	return stages
}

// Pipeline runs a fixed sequence of stages over a conversation
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger used for stage progress
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New builds a pipeline for opts
func New(opts Options, options ...Option) *Pipeline {
	p := &Pipeline{
		stages: Plan(opts),
		logger: zap.NewNop(),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Stages returns the planned stages
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Run folds conv through every stage, left to right. The first failing stage
// aborts the run and no conversation is returned.
func (p *Pipeline) Run(conv message.Conversation) (message.Conversation, error) {
	if conv.Messages == nil && !conv.Reported() {
		conv = conv.WithMessages([]message.Message{})
	}

	for _, stage := range p.stages {
		log := p.logger.With(zap.Stringer("stage", stage.Kind()))
		if b, ok := stage.(*Blacklist); ok {
			log = log.With(zap.Strings("words", b.Words()))
		}
		log.Debug("stage started", zap.Int("messages_in", conv.Len()))
		started := time.Now()

		next, err := stage.Apply(conv)
		if err != nil {
			log.Error("stage failed", zap.Error(err))
			return message.Conversation{}, &StageError{Stage: stage.Kind(), Err: err}
		}

		fields := []zap.Field{zap.Duration("duration", time.Since(started))}
		if next.Reported() {
			fields = append(fields, zap.Int("users", len(next.Users)))
		} else {
			fields = append(fields, zap.Int("messages_out", next.Len()))
		}
		log.Debug("stage finished", fields...)

		conv = next
	}

	return conv, nil
}
