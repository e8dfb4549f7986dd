package main

import "errors"

var (
	// ErrUsage occurs when a command is called with the wrong arguments.
	ErrUsage = errors.New("invalid usage")

	// ErrUnknownCommand occurs when no command of the given name exists.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrBrowserDisabled occurs when the browser is started while it is
	// turned off in the configuration.
	ErrBrowserDisabled = errors.New("the browser is disabled by configuration")
)
