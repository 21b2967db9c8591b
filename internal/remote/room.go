package remote

import "strings"

// PrivateSeparator joins the two participant ids of a private room.
const PrivateSeparator = ":u1:u2:"

// Participants returns the two user ids of a private room id. The boolean
// is false for shared rooms.
func Participants(room string) (a, b string, ok bool) {
	parts := strings.Split(room, PrivateSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// PrivateRoom returns the private room id for two users.
func PrivateRoom(a, b string) string {
	return a + PrivateSeparator + b
}

// Title is what a room is called in the header: the other participant for
// a private room, the room id otherwise. A viewer who is not a participant
// sees the first one.
func Title(room, uid string) string {
	a, b, ok := Participants(room)
	if !ok {
		return room
	}
	if a == uid {
		return b
	}
	return a
}
