package main

import (
	"io"
	"os"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/alessio/shellescape"
)

// ansiStrippingWriter removes terminal color codes before writing to a log file.
type ansiStrippingWriter struct {
	w io.Writer
}

func (a ansiStrippingWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(a.w, stripansi.Strip(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// openOutput returns the console output, mirrored to logFile when one is given. The returned
// function closes the log file.
func openOutput(console io.Writer, logFile string) (io.Writer, func() error, error) {
	if logFile == "" {
		return console, func() error { return nil }, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, err
	}
	return io.MultiWriter(console, ansiStrippingWriter{w: f}), f.Close, nil
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
