// Package relay is a small realtime store for chat rooms: clients hold a
// websocket per room, receive every record as "added" on connect, and get
// "added"/"removed" pushes as other clients create and delete records.
package relay

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/parleychat/parley/internal/remote"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 20 * time.Second

	// MaxRecordBytes bounds one stored record body. Clients enforce a
	// smaller limit on the plain text; encoding and markup grow it.
	MaxRecordBytes = 64 * 1024
)

// ErrPermission is the text sent back for rejected reads and writes.
const ErrPermission = "permission denied"

type client struct {
	ws  *websocket.Conn
	uid string
	mu  sync.Mutex // serializes writes
}

func (c *client) send(f remote.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	w, err := c.ws.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return w.Close()
}

// Server fans room changes out to connected clients.
type Server struct {
	store *Store

	// writeMu orders store writes, their broadcasts and backlog replays.
	writeMu sync.Mutex

	mu    sync.Mutex
	rooms map[string]map[*client]struct{}
	wg    sync.WaitGroup
}

// New creates a relay persisting to store.
func New(store *Store) *Server {
	return &Server{
		store: store,
		rooms: make(map[string]map[*client]struct{}),
	}
}

// Handler builds the relay HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/rooms/{room}/records", s.handleRecords)
	r.Get("/rooms/{room}/ws", s.handleWS)
	return r
}

func roomParam(r *http.Request) string {
	raw := chi.URLParam(r, "room")
	if room, err := url.PathUnescape(raw); err == nil {
		return room
	}
	return raw
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	room := roomParam(r)
	if !CanJoin(room, r.URL.Query().Get("uid")) {
		http.Error(w, ErrPermission, http.StatusForbidden)
		return
	}
	recs, err := s.store.List(room)
	if err != nil {
		log.Error().Err(err).Str("room", room).Msg("[relay] list records failed")
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []remote.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(recs)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	room := roomParam(r)
	uid := r.URL.Query().Get("uid")
	if !CanJoin(room, uid) {
		log.Warn().Str("room", room).Str("uid", uid).Msg("[relay] join rejected")
		http.Error(w, ErrPermission, http.StatusForbidden)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin:      func(r *http.Request) bool { return true },
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ws.SetReadLimit(MaxRecordBytes * 2)
	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	c := &client{ws: ws, uid: uid}

	s.writeMu.Lock()
	s.mu.Lock()
	if s.rooms[room] == nil {
		s.rooms[room] = make(map[*client]struct{})
	}
	s.rooms[room][c] = struct{}{}
	s.mu.Unlock()

	backlog, err := s.store.List(room)
	if err != nil {
		log.Error().Err(err).Str("room", room).Msg("[relay] load backlog failed")
		_ = c.send(remote.Frame{Op: remote.OpError, Error: "store unavailable"})
	}
	for i := range backlog {
		_ = c.send(remote.Frame{Op: remote.OpAdded, Record: &backlog[i]})
	}
	s.writeMu.Unlock()
	log.Info().Str("room", room).Str("uid", uid).Int("backlog", len(backlog)).Msg("[relay] client joined")

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
				err := ws.WriteMessage(websocket.PingMessage, nil)
				c.mu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			close(done)
			s.mu.Lock()
			delete(s.rooms[room], c)
			if len(s.rooms[room]) == 0 {
				delete(s.rooms, room)
			}
			s.mu.Unlock()
			_ = ws.Close()
			log.Info().Str("room", room).Str("uid", uid).Msg("[relay] client left")
		}()
		for {
			var f remote.Frame
			if err := ws.ReadJSON(&f); err != nil {
				log.Debug().Err(err).Msg("[relay] read failed")
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
			s.dispatch(room, c, f)
		}
	}()
}

func (s *Server) dispatch(room string, c *client, f remote.Frame) {
	s.writeMu.Lock()
	var errText string
	switch f.Op {
	case remote.OpCreate:
		errText = s.create(room, c.uid, f.Record)
	case remote.OpDelete:
		errText = s.delete(room, c.uid, f.Key)
	default:
		errText = "unknown op " + f.Op
	}
	s.writeMu.Unlock()
	if f.ID != "" {
		_ = c.send(remote.Frame{Op: remote.OpAck, ID: f.ID, Error: errText})
	}
}

func (s *Server) create(room, uid string, rec *remote.Record) string {
	if rec == nil {
		return "missing record"
	}
	if err := rec.Validate(); err != nil {
		return err.Error()
	}
	if rec.SenderID != uid {
		return ErrPermission
	}
	if len(rec.Body) > MaxRecordBytes {
		return "record too large"
	}
	if _, exists, err := s.store.Get(room, rec.Key); err != nil {
		return "store error"
	} else if exists {
		return "record already exists"
	}
	if err := s.store.Put(room, *rec); err != nil {
		log.Error().Err(err).Str("room", room).Msg("[relay] put failed")
		return "store error"
	}
	s.broadcast(room, remote.Frame{Op: remote.OpAdded, Record: rec})
	return ""
}

func (s *Server) delete(room, uid, key string) string {
	rec, exists, err := s.store.Get(room, key)
	if err != nil {
		return "store error"
	}
	if !exists {
		return ""
	}
	if rec.SenderID != uid {
		return ErrPermission
	}
	if err := s.store.Delete(room, key); err != nil {
		log.Error().Err(err).Str("room", room).Msg("[relay] delete failed")
		return "store error"
	}
	s.broadcast(room, remote.Frame{Op: remote.OpRemoved, Record: &rec})
	return ""
}

func (s *Server) broadcast(room string, f remote.Frame) {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.rooms[room]))
	for c := range s.rooms[room] {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.send(f); err != nil {
			log.Debug().Err(err).Str("uid", c.uid).Msg("[relay] send failed")
		}
	}
}

// Shutdown closes every client connection and waits for their handlers.
func (s *Server) Shutdown() {
	s.mu.Lock()
	var clients []*client
	for _, room := range s.rooms {
		for c := range room {
			clients = append(clients, c)
		}
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"), time.Now().Add(time.Second))
		c.mu.Unlock()
		_ = c.ws.Close()
	}
	s.wg.Wait()
}
