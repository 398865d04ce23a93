package domain

const (
	ChatCapacity   = 100
	MaxChatTextLen = 500
)

type ChatEntry struct {
	ID           string   `json:"id"`
	FromMemberID MemberID `json:"fromMemberId"`
	FromName     string   `json:"fromName"`
	FromSlot     int      `json:"fromSlot"`
	Text         string   `json:"text"`
	At           int64    `json:"at"`
}

// ChatLog is a bounded FIFO; the oldest entries are evicted past capacity.
type ChatLog struct {
	capacity int
	entries  []ChatEntry
}

func NewChatLog(capacity int) *ChatLog {
	if capacity <= 0 {
		capacity = ChatCapacity
	}
	return &ChatLog{capacity: capacity, entries: make([]ChatEntry, 0, capacity)}
}

func (l *ChatLog) Append(e ChatEntry) {
	if len(l.entries) >= l.capacity {
		n := copy(l.entries, l.entries[len(l.entries)-l.capacity+1:])
		l.entries = l.entries[:n]
	}
	l.entries = append(l.entries, e)
}

func (l *ChatLog) Len() int { return len(l.entries) }

// Entries returns a copy, oldest first.
func (l *ChatLog) Entries() []ChatEntry {
	out := make([]ChatEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
