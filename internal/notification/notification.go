// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"github.com/gen2brain/beeep"

	"github.com/parleychat/parley/internal/logger"
)

// AppName titles every notification.
const AppName = "Parley"

type notifyFunc func(title, message string, icon any) error

var notify notifyFunc = beeep.Notify

// SetNotifier replaces the notification backend. Used by tests.
func SetNotifier(fn func(title, message string, icon any) error) {
	notify = fn
}

// ResetNotifier restores the beeep backend.
func ResetNotifier() {
	notify = beeep.Notify
}

// Send sends a desktop notification with the given title and message.
// On macOS, it uses terminal-notifier or AppleScript.
// On Linux, it uses D-Bus or notify-send.
// On Windows, it uses the Windows Runtime COM API.
func Send(title, message string) error {
	logger.Debug("Notification: title=%q, message=%q", title, message)
	// Empty icon: beeep picks the platform default.
	err := notify(title, message, "")
	if err != nil {
		logger.Warn("Notification: failed to send: %v", err)
	}
	return err
}

// Toast shows a short status message from the app.
func Toast(message string) error {
	return Send(AppName, message)
}

// MessageReceived announces a message that arrived while the user was
// away from the bottom of the chat.
func MessageReceived(room, sender string) error {
	return Send(AppName, "New message from "+sender+" in "+room)
}
