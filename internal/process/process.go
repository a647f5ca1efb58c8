// Package process terminates child process trees left behind by the
// headless browser.
package process

import "errors"

// ErrInvalidPID is returned for zero or negative PIDs, which would otherwise
// signal the caller's own process group.
var ErrInvalidPID = errors.New("invalid pid")
