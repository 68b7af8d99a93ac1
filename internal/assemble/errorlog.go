package assemble

import "fmt"

// ErrorLog accumulates human-readable validation messages for the run.
// Checks append to it instead of aborting, so one pass over the feed
// surfaces every problem. The per-record count is sampled before and
// after assembly; any growth rejects the record.
//
// The log is owned by a single Assembler and is not safe for concurrent
// use; record processing is sequential.
type ErrorLog struct {
	entries []string
}

// NewErrorLog creates an empty log.
func NewErrorLog() *ErrorLog {
	return &ErrorLog{}
}

// Add appends a formatted message.
func (l *ErrorLog) Add(format string, args ...interface{}) {
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

// Count returns the number of accumulated messages.
func (l *ErrorLog) Count() int {
	return len(l.entries)
}

// Entries returns a copy of all accumulated messages in order.
func (l *ErrorLog) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns the messages added after the given count mark.
func (l *ErrorLog) Since(mark int) []string {
	if mark < 0 || mark > len(l.entries) {
		return nil
	}
	out := make([]string, len(l.entries)-mark)
	copy(out, l.entries[mark:])
	return out
}
