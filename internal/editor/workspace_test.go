package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
)

type recorder struct {
	events  []string
	changes [][]EditRange
}

func (r *recorder) SelectionChanged()      { r.events = append(r.events, "selection") }
func (r *recorder) ActiveDocumentChanged() { r.events = append(r.events, "document") }
func (r *recorder) ContentChanged(c []EditRange) {
	r.events = append(r.events, "content")
	r.changes = append(r.changes, c)
}

func TestEmptyWorkspace(t *testing.T) {
	w := NewWorkspace()

	_, ok := w.ActiveDocument()
	assert.Equal(t, ok, false)
	_, ok = w.ActiveSelection()
	assert.Equal(t, ok, false)

	// Edits without an active file are ignored.
	w.Insert("x")
	w.Move(MoveRight)
	assert.Equal(t, w.Lines() == nil, true)
}

func TestOpenNotifiesAndActivates(t *testing.T) {
	w := NewWorkspace()
	rec := &recorder{}
	w.Subscribe(rec)

	w.Open("a.ts", "first\nsecond")
	doc, ok := w.ActiveDocument()
	assert.Equal(t, ok, true)
	assert.Equal(t, doc, Document{FileName: "a.ts", Text: "first\nsecond"})

	cur, _ := w.ActiveSelection()
	assert.Equal(t, cur, Cursor{Line: 0, Column: 0, LineText: "first"})
	assert.Equal(t, rec.events, []string{"document"})

	// Re-opening switches instead of duplicating.
	w.Open("b.ts", "")
	w.Open("a.ts", "ignored")
	paths, active := w.Files()
	assert.Equal(t, paths, []string{"a.ts", "b.ts"})
	assert.Equal(t, active, 0)
	doc, _ = w.ActiveDocument()
	assert.Equal(t, doc.Text, "first\nsecond")
}

func TestInsertReportsRangeThenSelection(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "ab\ncd")
	w.Move(MoveDown)
	w.Move(MoveRight)

	rec := &recorder{}
	w.Subscribe(rec)
	w.Insert("XY")

	assert.Equal(t, rec.events, []string{"content", "selection"})
	assert.Equal(t, rec.changes[0], []EditRange{{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1, Text: "XY"}})

	doc, _ := w.ActiveDocument()
	assert.Equal(t, doc.Text, "ab\ncXYd")
	cur, _ := w.ActiveSelection()
	assert.Equal(t, cur, Cursor{Line: 1, Column: 3, LineText: "cXYd"})
}

func TestBackspaceJoinsLines(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "ab\ncd")
	w.Move(MoveDown)

	rec := &recorder{}
	w.Subscribe(rec)
	w.Backspace()

	assert.Equal(t, rec.changes[0], []EditRange{{StartLine: 0, StartCol: 2, EndLine: 1, EndCol: 0}})
	doc, _ := w.ActiveDocument()
	assert.Equal(t, doc.Text, "abcd")
	cur, _ := w.ActiveSelection()
	assert.Equal(t, cur.Column, 2)
}

func TestBackspaceAtStartIsNoop(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "ab")
	rec := &recorder{}
	w.Subscribe(rec)

	w.Backspace()
	assert.Equal(t, len(rec.events), 0)
}

func TestDeleteAtEndIsNoop(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "ab")
	w.Move(MoveLineEnd)
	rec := &recorder{}
	w.Subscribe(rec)

	w.Delete()
	assert.Equal(t, len(rec.events), 0)

	w.Move(MoveLineStart)
	w.Delete()
	doc, _ := w.ActiveDocument()
	assert.Equal(t, doc.Text, "b")
}

func TestApplyPreservesOrder(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "one\ntwo\nthree")
	rec := &recorder{}
	w.Subscribe(rec)

	w.Apply([]EditRange{
		{StartLine: 2, StartCol: 0, EndLine: 2, EndCol: 0, Text: "// "},
		{StartLine: 0, StartCol: 0, EndLine: 0, EndCol: 0, Text: "// "},
	})

	assert.Equal(t, len(rec.changes), 1)
	assert.Equal(t, len(rec.changes[0]), 2)
	assert.Equal(t, rec.changes[0][0].StartLine, 2)
	assert.Equal(t, rec.changes[0][1].StartLine, 0)
	doc, _ := w.ActiveDocument()
	assert.Equal(t, doc.Text, "// one\ntwo\n// three")
}

func TestApplyClampsOutOfRange(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "ab")
	rec := &recorder{}
	w.Subscribe(rec)

	w.Apply([]EditRange{{StartLine: 5, StartCol: 9, EndLine: 5, EndCol: 9, Text: "!"}})
	assert.Equal(t, rec.changes[0][0], EditRange{StartLine: 0, StartCol: 2, EndLine: 0, EndCol: 2, Text: "!"})
}

func TestMoveOnlyNotifiesWhenMoved(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "long line\nab")
	rec := &recorder{}
	w.Subscribe(rec)

	w.Move(MoveLeft)
	w.Move(MoveUp)
	assert.Equal(t, len(rec.events), 0)

	w.Move(MoveLineEnd)
	w.Move(MoveDown)
	cur, _ := w.ActiveSelection()
	assert.Equal(t, cur, Cursor{Line: 1, Column: 2, LineText: "ab"})
	assert.Equal(t, rec.events, []string{"selection", "selection"})
}

func TestMoveRightWrapsToNextLine(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "a\nb")
	w.Move(MoveRight)
	w.Move(MoveRight)
	cur, _ := w.ActiveSelection()
	assert.Equal(t, cur.Line, 1)
	assert.Equal(t, cur.Column, 0)
}

func TestCycleFiles(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "")
	w.Open("b.ts", "")
	rec := &recorder{}
	w.Subscribe(rec)

	w.Next()
	_, active := w.Files()
	assert.Equal(t, active, 0)
	w.Prev()
	_, active = w.Files()
	assert.Equal(t, active, 1)
	assert.Equal(t, rec.events, []string{"document", "document"})
}

func TestUnsubscribe(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "")
	first, second := &recorder{}, &recorder{}
	unsubscribe := w.Subscribe(first)
	w.Subscribe(second)

	unsubscribe()
	unsubscribe()
	w.Insert("x")

	assert.Equal(t, len(first.events), 0)
	assert.Equal(t, second.events, []string{"content", "selection"})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	w := NewWorkspace()
	w.Open(path, "hello")
	w.Move(MoveLineEnd)
	w.Insert(" world")

	if err := w.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	assert.Equal(t, string(data), "hello world")
}

func TestSaveWithoutFile(t *testing.T) {
	if err := NewWorkspace().Save(); err == nil {
		t.Fatal("expected error saving with no active file")
	}
}

func TestColumnsCountUTF16Units(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "😀a")
	rec := &recorder{}
	w.Subscribe(rec)

	w.Move(MoveLineEnd)
	cur, _ := w.ActiveSelection()
	assert.Equal(t, cur, Cursor{Line: 0, Column: 3, LineText: "😀a"})

	w.Move(MoveLeft)
	w.Backspace()
	assert.Equal(t, rec.changes[0], []EditRange{{StartLine: 0, StartCol: 0, EndLine: 0, EndCol: 2}})
	doc, _ := w.ActiveDocument()
	assert.Equal(t, doc.Text, "a")
}

func TestApplyReadsUTF16Columns(t *testing.T) {
	w := NewWorkspace()
	w.Open("a.ts", "😀a\nb")
	rec := &recorder{}
	w.Subscribe(rec)

	w.Apply([]EditRange{{StartLine: 0, StartCol: 2, EndLine: 0, EndCol: 3, Text: "X"}})

	doc, _ := w.ActiveDocument()
	assert.Equal(t, doc.Text, "😀X\nb")
	assert.Equal(t, rec.changes[0][0], EditRange{StartLine: 0, StartCol: 2, EndLine: 0, EndCol: 3, Text: "X"})
	cur, _ := w.ActiveSelection()
	assert.Equal(t, cur.Column, 3)
}

func TestColumnConversion(t *testing.T) {
	tests := []struct {
		line    string
		runeCol int
		unitCol int
	}{
		{"", 0, 0},
		{"abc", 2, 2},
		{"😀a", 1, 2},
		{"😀a", 2, 3},
		{"é😀", 2, 3},
		{"ab", 4, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, UTF16Col(tt.line, tt.runeCol), tt.unitCol)
		assert.Equal(t, RuneCol(tt.line, tt.unitCol), tt.runeCol)
	}

	// Inside a surrogate pair resolves to the start of the character.
	assert.Equal(t, RuneCol("😀a", 1), 0)
}
