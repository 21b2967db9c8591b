// Package errors provides structured error types for parley.
// Errors carry the operation that failed and a Kind that decides how the
// UI surfaces them: dialogs for user-facing kinds, log lines for the rest.
package errors

import (
	"errors"
	"fmt"
	"regexp"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindInvalidState
	KindPermission
	KindSizeLimit
	KindNotAllowed
	KindRemote
	KindNotFound
	KindConfig
	KindIO
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindInvalidState:
		return "invalid state"
	case KindPermission:
		return "permission denied"
	case KindSizeLimit:
		return "size limit exceeded"
	case KindNotAllowed:
		return "not allowed"
	case KindRemote:
		return "remote failure"
	case KindNotFound:
		return "not found"
	case KindConfig:
		return "configuration error"
	case KindIO:
		return "I/O error"
	case KindNetwork:
		return "network error"
	default:
		return "unknown error"
	}
}

// UserFacing reports whether errors of this kind are shown to the user as
// an alert dialog rather than only logged.
func (k Kind) UserFacing() bool {
	switch k {
	case KindPermission, KindSizeLimit, KindNotAllowed:
		return true
	}
	return false
}

// Error is the structured error type for parley.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the innermost user-readable text of err: the context
// string of a structured error with no wrapped cause, or err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Context == "" && e.Err != nil {
		var inner *Error
		if errors.As(e.Err, &inner) {
			return Message(inner)
		}
		return e.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

var permissionPattern = regexp.MustCompile(`(?i)permission|denied`)

// IsPermissionText reports whether a remote failure reads as an access
// rejection. Remote stores report these as free text, so the match is on
// the message rather than a code.
func IsPermissionText(err error) bool {
	if err == nil {
		return false
	}
	if Is(err, KindPermission) {
		return true
	}
	return permissionPattern.MatchString(err.Error())
}

// Overlay errors
func OverlayAlreadyVisible(kind string) error {
	return E(Op("overlay.Display"), KindInvalidState, fmt.Sprintf("%s is already visible", kind))
}

func UnknownOverlayKind(kind string) error {
	return E(Op("overlay.Set"), KindInvalidArgument, fmt.Sprintf("unknown overlay kind %q", kind))
}

// Chat errors
func TextTooLong(limit int) error {
	return E(Op("chat.Compose"), KindSizeLimit, fmt.Sprintf("Text exceeds limit of %dKB", limit/1024))
}

func RetractNotAllowed(reason string) error {
	return E(Op("chat.CheckRetract"), KindNotAllowed, reason)
}

func MessageNotFound(key string) error {
	return E(Op("chat.Lookup"), KindNotFound, fmt.Sprintf("message %s not found", key))
}

func RemoteFailed(op Op, err error) error {
	if IsPermissionText(err) {
		return E(op, KindPermission, err)
	}
	return E(op, KindRemote, err)
}

// Config errors
func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalidArgument, reason)
}
