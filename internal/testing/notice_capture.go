package testing

import (
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

// Notice is one server NOTICE/WARNING message.
type Notice struct {
	Severity string
	Code     string
	Message  string
}

// NoticeCapture collects server notices. Thread-safe for concurrent use.
type NoticeCapture struct {
	notices []Notice
	mu      sync.Mutex
}

func NewNoticeCapture() *NoticeCapture {
	return &NoticeCapture{}
}

// Handler returns a function suitable for pgx's OnNotice callback.
func (nc *NoticeCapture) Handler() func(*pgconn.PgConn, *pgconn.Notice) {
	return func(_ *pgconn.PgConn, n *pgconn.Notice) {
		if n == nil {
			return
		}

		nc.mu.Lock()
		defer nc.mu.Unlock()

		nc.notices = append(nc.notices, Notice{Severity: n.Severity, Code: n.Code, Message: n.Message})
	}
}

// Notices returns a copy of every captured notice.
func (nc *NoticeCapture) Notices() []Notice {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	result := make([]Notice, len(nc.notices))
	copy(result, nc.notices)
	return result
}

// Matching returns the messages containing substr.
func (nc *NoticeCapture) Matching(substr string) []string {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	var result []string
	for _, n := range nc.notices {
		if strings.Contains(n.Message, substr) {
			result = append(result, n.Message)
		}
	}
	return result
}

// Reset clears all captured notices.
func (nc *NoticeCapture) Reset() {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	nc.notices = nil
}

// Count returns the number of captured notices.
func (nc *NoticeCapture) Count() int {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	return len(nc.notices)
}
