package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mm-code/mirror/internal/editor"
)

// Join builds the message that enters room.
func Join(room string) Message {
	return newMessage(TypeJoin, JoinPayload{Name: room})
}

// Follow builds a full-document snapshot addressed to peer id.
func Follow(id string, doc editor.Document) Message {
	return newMessage(TypeFollow, FollowPayload{
		ID:       id,
		FileName: doc.FileName,
		Text:     doc.Text,
	})
}

// Line builds a cursor position message.
func Line(cur editor.Cursor) Message {
	return newMessage(TypeLine, LinePayload{
		Row:    cur.Line,
		Column: cur.Column,
		Text:   cur.LineText,
	})
}

// Updates builds an incremental change message. The ranges keep their order.
func Updates(changes []editor.EditRange) Message {
	updates := make([]Update, 0, len(changes))
	for _, c := range changes {
		updates = append(updates, Update{
			StartRow: c.StartLine,
			StartCol: c.StartCol,
			EndRow:   c.EndLine,
			EndCol:   c.EndCol,
			Text:     c.Text,
		})
	}
	return newMessage(TypeUpdates, UpdatesPayload{Updates: updates})
}

// Frame returns the wire form of m.
func (m Message) Frame() []byte {
	frame := make([]byte, 0, len(m.Type)+1+len(m.Payload))
	frame = append(frame, string(m.Type)...)
	frame = append(frame, ' ')
	return append(frame, m.Payload...)
}

func (m Message) String() string {
	return string(m.Frame())
}

// newMessage panics if v cannot be encoded; every payload type in this
// package is plain strings and ints.
func newMessage(t Type, v any) Message {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(fmt.Sprintf("protocol: encode %s: %v", t, err))
	}
	return Message{Type: t, Payload: bytes.TrimRight(buf.Bytes(), "\n")}
}
