package progs

import "fmt"

// RunError aborts the running script. The server survives it.
type RunError struct {
	Builtin string
	Msg     string
	Err     error
}

func (e *RunError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Builtin == "" {
		return "progs: " + msg
	}
	return fmt.Sprintf("progs: %s: %s", e.Builtin, msg)
}

func (e *RunError) Unwrap() error { return e.Err }

// FatalError is raised only by the error builtin. It stops the server.
type FatalError struct {
	Function string
	Msg      string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("progs: server error in %s: %s", e.Function, e.Msg)
}

func runErrorf(format string, args ...any) error {
	return &RunError{Msg: fmt.Sprintf(format, args...)}
}

// wrapRun turns a collaborator error into a script-fatal one.
func wrapRun(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &RunError{Msg: msg, Err: err}
}
