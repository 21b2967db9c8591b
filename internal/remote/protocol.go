package remote

import (
	"fmt"
	"net/url"
	"strings"
)

// Frame operations on the relay websocket.
const (
	OpCreate  = "create"  // client → relay
	OpDelete  = "delete"  // client → relay
	OpAdded   = "added"   // relay → client
	OpRemoved = "removed" // relay → client
	OpAck     = "ack"     // relay → client, answers create/delete by id
	OpError   = "error"   // relay → client, subscription-level failure
)

// Frame is one JSON websocket message between client and relay.
type Frame struct {
	Op     string  `json:"op"`
	ID     string  `json:"id,omitempty"`
	Key    string  `json:"key,omitempty"`
	Record *Record `json:"record,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// RoomURL builds the websocket address of room on server for uid. http and
// https server addresses are mapped to ws and wss.
func RoomURL(server, room, uid string) (string, error) {
	u, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
	base := u.EscapedPath()
	u.Path = u.Path + "/rooms/" + room + "/ws"
	u.RawPath = base + "/rooms/" + url.PathEscape(room) + "/ws"
	q := u.Query()
	q.Set("uid", uid)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
