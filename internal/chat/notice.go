package chat

import "github.com/parleychat/parley/internal/errors"

// Alert titles by error kind.
const (
	TitleWarning    = "Warning"
	TitleFatal      = "Fatal Error!"
	TitleNotAllowed = "Not allowed"
)

// Notice returns the alert a user should see for err. ok is false for
// errors that are only logged.
func Notice(err error) (title, body string, ok bool) {
	if err == nil {
		return "", "", false
	}
	switch errors.GetKind(err) {
	case errors.KindSizeLimit:
		title = TitleWarning
	case errors.KindPermission:
		title = TitleFatal
	case errors.KindNotAllowed:
		title = TitleNotAllowed
	default:
		return "", "", false
	}
	return title, errors.Message(err), true
}
