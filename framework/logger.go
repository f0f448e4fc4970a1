package framework

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used by the runner. *log.Logger satisfies it.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

// NewTimestampLogger returns a Logger that writes each message to w on its own line, stamped
// in the same format as dumped debug output.
func NewTimestampLogger(w io.Writer) Logger {
	return &timestampLogger{w: w}
}

type timestampLogger struct {
	w    io.Writer
	lock sync.Mutex
}

func (l *timestampLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	writeMessage(l.w, "", CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
}

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger keeps messages in memory, so that a step's debug output can be shown only
// if the step fails.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

// Dump writes every message with prefix. Continuation lines of a multi-line message are
// indented under the first.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		writeMessage(dest, prefix, m)
	}
}

func writeMessage(dest io.Writer, prefix string, m CapturedMessage) {
	stamp := "[" + m.Time.Format(timestampFormat) + "] "
	lines := strings.Split(strings.TrimRight(m.Message, "\n"), "\n")
	fmt.Fprintf(dest, "%s%s%s\n", prefix, stamp, lines[0])
	indent := strings.Repeat(" ", len(stamp))
	for _, line := range lines[1:] {
		fmt.Fprintf(dest, "%s%s%s\n", prefix, indent, line)
	}
}
