package pipeline

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/john/chatexport/internal/message"
	"github.com/john/chatexport/internal/textutil"
)

// DefaultRedactionToken replaces blacklisted words
const DefaultRedactionToken = "*redacted*"

// Blacklist masks whole-word, case-insensitive occurrences of forbidden words
type Blacklist struct {
	words   []string
	token   string
	re      *regexp.Regexp   // Any entry; nil when no usable words were given
	entries []*regexp.Regexp // One anchored matcher per entry, longest first
}

// NewBlacklist creates a redactor for words. Blank entries are ignored and
// an empty token falls back to DefaultRedactionToken.
func NewBlacklist(words []string, token string) *Blacklist {
	if token == "" {
		token = DefaultRedactionToken
	}

	b := &Blacklist{token: token}
	seen := make(map[string]bool)
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := textutil.Fold(w)
		if w == "" || seen[key] {
			continue
		}
		seen[key] = true
		b.words = append(b.words, w)
	}
	if len(b.words) == 0 {
		return b
	}

	// Longer words first so "pie crust" wins over "pie" at the same position.
	alts := make([]string, len(b.words))
	for i, w := range b.words {
		alts[i] = regexp.QuoteMeta(w)
	}
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	b.re = regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)

	b.entries = make([]*regexp.Regexp, len(alts))
	for i, alt := range alts {
		b.entries[i] = regexp.MustCompile(`^(?i:` + alt + `)`)
	}

	return b
}

func (b *Blacklist) Kind() Kind { return KindBlacklist }

func (b *Blacklist) sealed() {}

// Words returns the effective blacklist
func (b *Blacklist) Words() []string {
	return append([]string(nil), b.words...)
}

// Apply rewrites the content of every message. Message count and order are
// unchanged.
func (b *Blacklist) Apply(conv message.Conversation) (message.Conversation, error) {
	if conv.Reported() {
		return message.Conversation{}, errReported
	}

	out := make([]message.Message, len(conv.Messages))
	for i, m := range conv.Messages {
		m.Content = b.Redact(m.Content)
		out[i] = m
	}
	return conv.WithMessages(out), nil
}

// Redact masks every blacklisted word in s
func (b *Blacklist) Redact(s string) string {
	if b.re == nil {
		return s
	}

	var sb strings.Builder
	last, pos := 0, 0
	for pos < len(s) {
		loc := b.re.FindStringIndex(s[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]

		if end, ok := b.wholeWordAt(s, start); ok {
			sb.WriteString(s[last:start])
			sb.WriteString(b.token)
			last, pos = end, end
			continue
		}

		// Retry one rune further so an overlapping whole-word match is not skipped.
		_, size := utf8.DecodeRuneInString(s[start:])
		pos = start + size
	}

	if last == 0 {
		return s
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// wholeWordAt returns the end of the longest entry matching s at start as a
// whole word.
func (b *Blacklist) wholeWordAt(s string, start int) (int, bool) {
	for _, re := range b.entries {
		loc := re.FindStringIndex(s[start:])
		if loc == nil {
			continue
		}
		if end := start + loc[1]; isWholeWord(s, start, end) {
			return end, true
		}
	}
	return 0, false
}

// isWholeWord reports whether s[start:end] sits on word boundaries. An edge
// of the match that is not itself a word rune needs no boundary.
func isWholeWord(s string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(s[start:end])
	if textutil.IsWordRune(first) && start > 0 {
		if prev, _ := utf8.DecodeLastRuneInString(s[:start]); textutil.IsWordRune(prev) {
			return false
		}
	}

	lastRune, _ := utf8.DecodeLastRuneInString(s[start:end])
	if textutil.IsWordRune(lastRune) && end < len(s) {
		if next, _ := utf8.DecodeRuneInString(s[end:]); textutil.IsWordRune(next) {
			return false
		}
	}
	return true
}
