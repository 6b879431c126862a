package council

import (
	"sync"
	"time"
)

// EntryKind distinguishes spoken turns from system notices.
type EntryKind int

const (
	EntryMessage EntryKind = iota
	EntryNotice
)

// Entry is one rendered line of the transcript. Entries are immutable once
// appended; position is append order and is the only ordering the client
// guarantees.
type Entry struct {
	Kind    EntryKind
	Speaker string
	Text    string
	Human   bool
	At      time.Time
}

// Transcript is the append-only projection of a session's conversation.
// There is no backward mutation and no deletion; a session switch replaces
// the whole transcript via Clear. Safe for concurrent use.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Clear drops every entry. Must run before any new session's history is
// appended so old and new content never interleave.
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.entries = nil
	t.mu.Unlock()
}

// AppendMessage records one spoken turn.
func (t *Transcript) AppendMessage(speaker, text string, human bool) {
	t.mu.Lock()
	t.entries = append(t.entries, Entry{
		Kind:    EntryMessage,
		Speaker: speaker,
		Text:    text,
		Human:   human,
		At:      time.Now(),
	})
	t.mu.Unlock()
}

// AppendSystemNotice records an operator-facing notice.
func (t *Transcript) AppendSystemNotice(text string) {
	t.mu.Lock()
	t.entries = append(t.entries, Entry{
		Kind: EntryNotice,
		Text: text,
		At:   time.Now(),
	})
	t.mu.Unlock()
}

// Entries returns a copy in append order.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

// Len is the number of entries.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
