package server

import (
	"encoding/json"

	"github.com/sgrady/go-doc-editor/editor"
)

// Message types exchanged over WebSocket.
const (
	MsgJoin    = "join"
	MsgLeave   = "leave"
	MsgUpdate  = "update"
	MsgCursor  = "cursor"
	MsgSave    = "save"
	MsgUndo    = "undo"
	MsgRedo    = "redo"
	MsgPropose = "propose"
	MsgAccept  = "accept"
	MsgReject  = "reject"
	MsgLoad    = "load"
	MsgDoc     = "doc"
	MsgState   = "state"
	MsgChanges = "changes"
	MsgError   = "error"
)

// ClientMessage is a message from client to server.
type ClientMessage struct {
	Type      string            `json:"type"`
	DocID     string            `json:"docId,omitempty"`
	Content   string            `json:"content,omitempty"`
	Position  int               `json:"position,omitempty"`
	Selection *editor.Selection `json:"selection,omitempty"`
	Range     editor.Range      `json:"range,omitempty"`
	ChangeID  string            `json:"changeId,omitempty"`
	VersionID string            `json:"versionId,omitempty"`
}

// ServerMessage is a message from server to client.
type ServerMessage struct {
	Type      string              `json:"type"`
	DocID     string              `json:"docId,omitempty"`
	Content   string              `json:"content"`
	Version   string              `json:"version,omitempty"`
	Dirty     bool                `json:"dirty"`
	CanUndo   bool                `json:"canUndo"`
	CanRedo   bool                `json:"canRedo"`
	Changes   []editor.FileChange `json:"changes,omitempty"`
	ClientID  string              `json:"clientId,omitempty"`
	Name      string              `json:"name,omitempty"`
	Color     string              `json:"color,omitempty"`
	Position  int                 `json:"position,omitempty"`
	Selection *editor.Selection   `json:"selection,omitempty"`
	Message   string              `json:"message,omitempty"`
	Clients   []ClientInfo        `json:"clients,omitempty"`
}

// ClientInfo describes a connected user.
type ClientInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Encode serializes a ServerMessage to JSON bytes.
func (m ServerMessage) Encode() []byte {
	b, _ := json.Marshal(m)
	return b
}
