// Package protocol encodes editor events into mirror protocol frames and
// decodes frames received from the collaboration server.
//
// A frame is the message type, a single space and the JSON payload:
//
//	join {"name":"room"}
//	follow {"id":"","fileName":"a.ts","text":"..."}
//	line {"r":0,"c":4,"l":"func main() {"}
//	updates {"updates":[{"sr":0,"sc":0,"er":0,"ec":0,"t":"x"}]}
//
// Frames carry no sequence number; ordering relies on the connection.
package protocol

import "encoding/json"

// Type identifies the kind of protocol message.
type Type string

const (
	TypeJoin    Type = "join"
	TypeFollow  Type = "follow"
	TypeLine    Type = "line"
	TypeUpdates Type = "updates"
	TypeSay     Type = "say"
	TypeText    Type = "text"
)

// Room is the collaboration channel every client joins unless configured
// otherwise.
const Room = "room"

// Message is one protocol unit: a type tag and its raw JSON payload.
type Message struct {
	Type    Type
	Payload json.RawMessage
}

// JoinPayload asks the server to add the client to a room.
type JoinPayload struct {
	Name string `json:"name"`
}

// FollowPayload carries the full text of the active file. ID names the peer
// the snapshot is meant for; empty means everyone.
type FollowPayload struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	Text     string `json:"text"`
}

// LinePayload carries the cursor position and the text of its line.
type LinePayload struct {
	Row    int    `json:"r"`
	Column int    `json:"c"`
	Text   string `json:"l"`
}

// Update is a single replaced range.
type Update struct {
	StartRow int    `json:"sr"`
	StartCol int    `json:"sc"`
	EndRow   int    `json:"er"`
	EndCol   int    `json:"ec"`
	Text     string `json:"t"`
}

// UpdatesPayload carries the ranges of one editor change, in editor order.
type UpdatesPayload struct {
	Updates []Update `json:"updates"`
}
