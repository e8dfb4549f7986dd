package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// LogMsg is a log line shown in the logs panel of the browser.
type LogMsg string

type teaProgramProvider interface {
	Send(msg tea.Msg)
}

// TeaLogWriter is an [io.Writer] for a [slog.Handler] that forwards every
// log line to a [tea.Program] as a [LogMsg]. Stop it with
// [TeaLogWriter.Stop] once logging into the program has ended.
type TeaLogWriter struct {
	program  teaProgramProvider
	doneChan chan struct{}
	logChan  chan LogMsg
}

// NewTeaLogWriter returns a pointer to a new [TeaLogWriter] sending to program.
func NewTeaLogWriter(program teaProgramProvider) *TeaLogWriter {
	wr := &TeaLogWriter{
		program:  program,
		doneChan: make(chan struct{}),
		logChan:  make(chan LogMsg, 1000), //nolint:mnd
	}

	go wr.processLogs()

	return wr
}

// Stop ends forwarding. Lines written afterwards are dropped.
func (wr *TeaLogWriter) Stop() {
	close(wr.doneChan)
}

func (wr *TeaLogWriter) processLogs() {
	for {
		select {
		case <-wr.doneChan:
			return
		case msg := <-wr.logChan:
			wr.program.Send(msg)
		}
	}
}

// Write queues one log line. It never blocks once the writer is stopped.
func (wr *TeaLogWriter) Write(p []byte) (int, error) {
	select {
	case <-wr.doneChan:
	case wr.logChan <- LogMsg(p):
	}

	return len(p), nil
}
