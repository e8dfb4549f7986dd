// Package ui implements an interactive directory browser using [tea].
package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/rawos/internal/readdir"
)

type dirProvider interface {
	ReadDir(path string) (*readdir.ReadDir, error)
}

// Handler runs the browser program.
type Handler struct {
	fs      dirProvider
	program *tea.Program

	LogWriter *TeaLogWriter

	Ready  atomic.Bool
	Failed atomic.Bool
}

// NewHandler returns a browser starting out in root. Canceling the browser
// with ctrl+c calls cancel.
func NewHandler(ctx context.Context, cancel context.CancelFunc, fs dirProvider, root string, opts ...tea.ProgramOption) *Handler {
	handler := &Handler{
		fs: fs,
	}

	model := NewTeaModel(handler, root, cancel)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	handler.program = tea.NewProgram(model, opts...)
	handler.LogWriter = NewTeaLogWriter(handler.program)

	return handler
}

// Send passes msg to the running program.
func (uiHandler *Handler) Send(msg tea.Msg) {
	uiHandler.program.Send(msg)
}

// Launch runs the browser until it is quit.
func (uiHandler *Handler) Launch() error {
	defer uiHandler.LogWriter.Stop()

	if _, err := uiHandler.program.Run(); err != nil {
		uiHandler.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}
