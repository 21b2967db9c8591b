package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	perrors "github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/logger"
)

const wsWriteTimeout = 10 * time.Second

// WS is a Log backed by a relay websocket. It keeps a local copy of the
// room so late subscribers still see every record.
type WS struct {
	conn    *websocket.Conn
	clock   clock.Clock
	keys    *KeyGen
	writeMu sync.Mutex

	mu      sync.Mutex
	records map[string]Record
	order   []string
	feeds   map[*feed]struct{}
	pending map[string]chan error
	closed  bool
	done    chan struct{}
}

// DialWS connects to room on server as uid.
func DialWS(ctx context.Context, server, room, uid string) (*WS, error) {
	addr, err := RoomURL(server, room, uid)
	if err != nil {
		return nil, perrors.E(perrors.Op("remote.DialWS"), perrors.KindConfig, err)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == 403 {
			return nil, perrors.E(perrors.Op("remote.DialWS"), perrors.KindPermission, "permission denied", err)
		}
		return nil, perrors.E(perrors.Op("remote.DialWS"), perrors.KindNetwork, fmt.Sprintf("connect %s", addr), err)
	}

	w := &WS{
		conn:    conn,
		clock:   clock.New(),
		keys:    NewKeyGen(),
		records: make(map[string]Record),
		feeds:   make(map[*feed]struct{}),
		pending: make(map[string]chan error),
		done:    make(chan struct{}),
	}
	go w.readLoop()

	log := logger.WithRoom(room)
	log.Info().Str("addr", addr).Msg("connected to relay")
	return w, nil
}

func (w *WS) readLoop() {
	defer close(w.done)
	for {
		var f Frame
		if err := w.conn.ReadJSON(&f); err != nil {
			w.fail(err)
			return
		}
		w.handle(f)
	}
}

func (w *WS) handle(f Frame) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch f.Op {
	case OpAdded:
		if f.Record == nil {
			return
		}
		rec := *f.Record
		if _, ok := w.records[rec.Key]; !ok {
			w.order = append(w.order, rec.Key)
		}
		w.records[rec.Key] = rec
		w.publishLocked(Event{Kind: EventAdded, Record: rec})
	case OpRemoved:
		if f.Record == nil {
			return
		}
		rec := *f.Record
		delete(w.records, rec.Key)
		for i, k := range w.order {
			if k == rec.Key {
				w.order = append(w.order[:i], w.order[i+1:]...)
				break
			}
		}
		w.publishLocked(Event{Kind: EventRemoved, Record: rec})
	case OpAck:
		ch, ok := w.pending[f.ID]
		if !ok {
			return
		}
		delete(w.pending, f.ID)
		if f.Error != "" {
			ch <- errors.New(f.Error)
		} else {
			ch <- nil
		}
	case OpError:
		w.publishLocked(Event{Kind: EventError, Err: errors.New(f.Error)})
	default:
		logger.Warn("remote: ignoring frame with op %q", f.Op)
	}
}

func (w *WS) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.closed {
		logger.Error("remote: relay connection lost: %v", err)
		w.publishLocked(Event{Kind: EventError, Err: perrors.E(perrors.Op("remote.WS"), perrors.KindNetwork, err)})
	}
	for id, ch := range w.pending {
		ch <- perrors.E(perrors.Op("remote.WS"), perrors.KindNetwork, "connection closed", err)
		delete(w.pending, id)
	}
	w.closed = true
	for f := range w.feeds {
		f.stop()
	}
}

func (w *WS) publishLocked(ev Event) {
	for f := range w.feeds {
		f.push(ev)
	}
}

func (w *WS) Subscribe(ctx context.Context) (<-chan Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, perrors.E(perrors.Op("remote.Subscribe"), perrors.KindInvalidState, "connection is closed")
	}
	f := newFeed()
	for _, k := range w.order {
		f.push(Event{Kind: EventAdded, Record: w.records[k]})
	}
	w.feeds[f] = struct{}{}
	go f.run(ctx, func() {
		w.mu.Lock()
		delete(w.feeds, f)
		w.mu.Unlock()
	})
	return f.out, nil
}

func (w *WS) NewKey() string {
	return w.keys.Next(w.clock.Now())
}

func (w *WS) Create(ctx context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	return w.request(ctx, Frame{Op: OpCreate, Record: &rec})
}

func (w *WS) Delete(ctx context.Context, key string) error {
	return w.request(ctx, Frame{Op: OpDelete, Key: key})
}

func (w *WS) request(ctx context.Context, f Frame) error {
	f.ID = uuid.NewString()
	ack := make(chan error, 1)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return perrors.E(perrors.Op("remote.WS"), perrors.KindNetwork, "connection is closed")
	}
	w.pending[f.ID] = ack
	w.mu.Unlock()

	if err := w.write(f); err != nil {
		w.mu.Lock()
		delete(w.pending, f.ID)
		w.mu.Unlock()
		return perrors.E(perrors.Op("remote.WS"), perrors.KindNetwork, err)
	}

	select {
	case err := <-ack:
		return err
	case <-ctx.Done():
		w.mu.Lock()
		delete(w.pending, f.ID)
		w.mu.Unlock()
		return ctx.Err()
	}
}

// write sends one frame without HTML escaping so bodies travel verbatim.
func (w *WS) write(f Frame) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	wr, err := w.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(wr)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return wr.Close()
}

func (w *WS) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.writeMu.Lock()
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	w.writeMu.Unlock()

	err := w.conn.Close()
	<-w.done
	return err
}
