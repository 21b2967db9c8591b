package relay

import "github.com/parleychat/parley/internal/remote"

// CanJoin reports whether uid may read room.
func CanJoin(room, uid string) bool {
	if uid == "" {
		return false
	}
	a, b, private := remote.Participants(room)
	if !private {
		return true
	}
	return uid == a || uid == b
}
