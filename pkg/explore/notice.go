package explore

import (
	"sync"
)

// User-facing notice texts.
const (
	MsgGraphLimit    = "Graph size limit reached. Please start a new exploration."
	MsgNoNewNodes    = "No new connections found"
	MsgExpandFailed  = "Could not load more connections. Please try again."
	MsgLoadFailed    = "Could not load the graph. Please try again."
	MsgTimeout       = "The request timed out. Please try again."
	MsgInvalidFormat = "The server returned data that could not be read. Please try again."
)

// Level classifies a [Notice].
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a transient message for the user, such as a snackbar.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	NodeID  string `json:"nodeId,omitempty"`
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

type discard struct{}

func (discard) Notify(Notice) {}

// Recorder is a [Notifier] that keeps every notice. The zero value is ready
// to use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records n.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(n Notice) {
	for _, x := range m {
		x.Notify(n)
	}
}
