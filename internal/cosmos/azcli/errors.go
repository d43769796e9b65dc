package azcli

import (
	"fmt"
	"strings"
)

// ErrAzNotFound indicates the az executable could not be located.
type ErrAzNotFound struct {
	Binary string
}

func (e ErrAzNotFound) Error() string {
	if e.Binary == "" || e.Binary == DefaultBinary {
		return "az executable not found in PATH; install the Azure CLI"
	}
	return fmt.Sprintf("az executable %q not found", e.Binary)
}

// ErrCommandFailed reports a non-zero az exit. Stderr is what az printed.
type ErrCommandFailed struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ErrCommandFailed) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("az %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *ErrCommandFailed) Unwrap() error {
	return e.Err
}

// ErrDecode reports az output that is not the JSON shape a command returns.
type ErrDecode struct {
	Args []string
	Err  error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("decoding output of az %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *ErrDecode) Unwrap() error {
	return e.Err
}
