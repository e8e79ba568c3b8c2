package server

import (
	"context"
	"log"

	"github.com/sgrady/go-doc-editor/editor"
)

type command struct {
	client *Client
	msg    ClientMessage
}

// Session bridges WebSocket clients to a single document's editing
// session. All commands are serialized through one goroutine; the
// editor session's autosave runs independently and its failures arrive
// through the errs channel.
type Session struct {
	docID   string
	editor  *editor.Session
	clients map[*Client]bool

	incoming chan command
	join     chan *Client
	leave    chan *Client
	errs     chan string
	stop     chan struct{}

	// onEmpty runs when the last client leaves, before the editor
	// session is closed.
	onEmpty func()
}

func newSession(docID string) *Session {
	return &Session{
		docID:    docID,
		clients:  make(map[*Client]bool),
		incoming: make(chan command, 64),
		join:     make(chan *Client, 16),
		leave:    make(chan *Client, 16),
		errs:     make(chan string, 16),
		stop:     make(chan struct{}),
	}
}

// reportError is the editor session's error sink. It hands failures to
// the session loop for broadcast without blocking the caller.
func (s *Session) reportError(msg string) {
	select {
	case s.errs <- msg:
	default:
		log.Printf("session %s: dropped error report: %s", s.docID, msg)
	}
}

// Run is the session's main loop. It serializes all commands and exits
// when the last client leaves or the session is stopped.
func (s *Session) Run() {
	for {
		select {
		case c := <-s.join:
			s.handleJoin(c)
		case c := <-s.leave:
			if s.handleLeave(c) {
				return
			}
		case cmd := <-s.incoming:
			s.handleCommand(cmd)
		case msg := <-s.errs:
			log.Printf("session %s: %s", s.docID, msg)
			s.broadcast(ServerMessage{Type: MsgError, DocID: s.docID, Message: msg})
		case <-s.stop:
			s.editor.Close()
			return
		}
	}
}

func (s *Session) handleJoin(c *Client) {
	s.clients[c] = true
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	// Send current document state to the joining client.
	c.sendMsg(ServerMessage{
		Type:    MsgDoc,
		DocID:   s.docID,
		Content: s.editor.Content(),
		Version: s.editor.Version(),
		Dirty:   s.editor.Dirty(),
		CanUndo: s.editor.CanUndo(),
		CanRedo: s.editor.CanRedo(),
		Changes: s.editor.Changes(),
		Clients: s.clientInfos(),
	})

	// Notify other clients about the new user.
	for other := range s.clients {
		if other != c {
			other.sendMsg(ServerMessage{
				Type:     MsgJoin,
				ClientID: c.ID,
				Name:     c.Name,
				Color:    c.Color,
			})
		}
	}
}

// handleLeave removes a client and reports whether the session emptied
// out. An empty session tears down its editor session, cancelling any
// pending autosave timers.
func (s *Session) handleLeave(c *Client) bool {
	if _, ok := s.clients[c]; !ok {
		return false
	}
	delete(s.clients, c)
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	close(c.send)

	for other := range s.clients {
		other.sendMsg(ServerMessage{
			Type:     MsgLeave,
			ClientID: c.ID,
		})
	}

	if len(s.clients) > 0 {
		return false
	}
	if s.onEmpty != nil {
		s.onEmpty()
	}
	s.editor.Close()
	return true
}

func (s *Session) handleCommand(cmd command) {
	ctx := context.Background()

	switch cmd.msg.Type {
	case MsgUpdate:
		s.editor.UpdateContent(cmd.msg.Content)
		s.broadcastState()
	case MsgCursor:
		s.editor.UpdateCursor(cmd.msg.Position, cmd.msg.Selection)
		for other := range s.clients {
			if other != cmd.client {
				other.sendMsg(ServerMessage{
					Type:      MsgCursor,
					ClientID:  cmd.client.ID,
					Position:  cmd.msg.Position,
					Selection: cmd.msg.Selection,
				})
			}
		}
	case MsgSave:
		s.editor.Save(ctx)
		s.broadcastState()
	case MsgUndo:
		s.editor.Undo()
		s.broadcastState()
	case MsgRedo:
		s.editor.Redo()
		s.broadcastState()
	case MsgPropose:
		s.editor.AddChange(cmd.client.Name, cmd.msg.Range, cmd.msg.Content)
		s.broadcastChanges()
	case MsgAccept:
		s.editor.AcceptChange(cmd.msg.ChangeID)
		s.broadcastChanges()
	case MsgReject:
		s.editor.RejectChange(cmd.msg.ChangeID)
		s.broadcastChanges()
	case MsgLoad:
		s.editor.LoadVersion(ctx, cmd.msg.VersionID)
		s.broadcastState()
	default:
		cmd.client.sendError("unknown command: " + cmd.msg.Type)
	}
}

func (s *Session) broadcastState() {
	s.broadcast(ServerMessage{
		Type:    MsgState,
		DocID:   s.docID,
		Content: s.editor.Content(),
		Version: s.editor.Version(),
		Dirty:   s.editor.Dirty(),
		CanUndo: s.editor.CanUndo(),
		CanRedo: s.editor.CanRedo(),
	})
}

func (s *Session) broadcastChanges() {
	s.broadcast(ServerMessage{
		Type:    MsgChanges,
		DocID:   s.docID,
		Changes: s.editor.Changes(),
	})
}

func (s *Session) broadcast(msg ServerMessage) {
	for c := range s.clients {
		c.sendMsg(msg)
	}
}

func (s *Session) clientInfos() []ClientInfo {
	infos := make([]ClientInfo, 0, len(s.clients))
	for c := range s.clients {
		infos = append(infos, c.Info())
	}
	return infos
}
