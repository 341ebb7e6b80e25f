package background

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRemovalFailed marks any failure of a background-removal collaborator
var ErrRemovalFailed = errors.New("background removal failed")

// RemovalError carries what the collaborator reported when it failed
type RemovalError struct {
	Remover string
	Stderr  string
	Err     error
}

func (e *RemovalError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrRemovalFailed, e.Remover)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Is lets errors.Is match ErrRemovalFailed
func (e *RemovalError) Is(target error) bool {
	return target == ErrRemovalFailed
}

func (e *RemovalError) Unwrap() error {
	return e.Err
}
