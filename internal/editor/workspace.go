package editor

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Motion identifies a cursor movement.
type Motion int

const (
	MoveLeft Motion = iota
	MoveRight
	MoveUp
	MoveDown
	MoveLineStart
	MoveLineEnd
)

type file struct {
	path string
	text []rune
	line int
	col  int
}

// offset converts a position to a rune offset, clamping out-of-range values.
func (f *file) offset(line, col int) int {
	if line < 0 {
		return 0
	}
	off := 0
	for l := 0; l < line; l++ {
		i := indexRune(f.text[off:], '\n')
		if i < 0 {
			return len(f.text)
		}
		off += i + 1
	}
	end := indexRune(f.text[off:], '\n')
	if end < 0 {
		end = len(f.text) - off
	}
	if col < 0 {
		col = 0
	}
	if col > end {
		col = end
	}
	return off + col
}

func (f *file) position(off int) (line, col int) {
	start := 0
	for i := 0; i < off && i < len(f.text); i++ {
		if f.text[i] == '\n' {
			line++
			start = i + 1
		}
	}
	return line, off - start
}

func (f *file) lineText(line int) string {
	lines := strings.Split(string(f.text), "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return lines[line]
}

func (f *file) lineLen(line int) int {
	return len([]rune(f.lineText(line)))
}

func (f *file) lineCount() int {
	n := 1
	for _, r := range f.text {
		if r == '\n' {
			n++
		}
	}
	return n
}

// unitOffset converts a position with a UTF-16 column to a rune offset.
func (f *file) unitOffset(line, col int) int {
	return f.offset(line, RuneCol(f.lineText(line), col))
}

// unitPosition converts a rune offset to a line and UTF-16 column.
func (f *file) unitPosition(off int) (line, col int) {
	line, col = f.position(off)
	return line, UTF16Col(f.lineText(line), col)
}

// replace swaps the runes in [start, end) for text and reports the change in
// the units of EditRange, measured against the text before the edit.
func (f *file) replace(start, end int, text string) EditRange {
	if end < start {
		start, end = end, start
	}
	var r EditRange
	r.StartLine, r.StartCol = f.unitPosition(start)
	r.EndLine, r.EndCol = f.unitPosition(end)
	r.Text = text

	ins := []rune(text)
	buf := make([]rune, 0, len(f.text)-(end-start)+len(ins))
	buf = append(buf, f.text[:start]...)
	buf = append(buf, ins...)
	buf = append(buf, f.text[end:]...)
	f.text = buf
	f.line, f.col = f.position(start + len(ins))
	return r
}

func indexRune(rs []rune, r rune) int {
	for i, c := range rs {
		if c == r {
			return i
		}
	}
	return -1
}

type subscription struct {
	id int
	h  Handler
}

// Workspace is a set of open files with one active file and a cursor per file.
// It implements Provider and Source. Handlers are called after the workspace
// lock is released, in subscription order.
type Workspace struct {
	mu     sync.Mutex
	files  []*file
	active int
	subs   []subscription
	nextID int
}

// NewWorkspace returns an empty workspace with no active document.
func NewWorkspace() *Workspace {
	return &Workspace{active: -1}
}

// Subscribe registers h for notifications.
func (w *Workspace) Subscribe(h Handler) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs = append(w.subs, subscription{id: id, h: h})
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			for i, s := range w.subs {
				if s.id == id {
					w.subs = append(w.subs[:i:i], w.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (w *Workspace) handlers() []Handler {
	hs := make([]Handler, len(w.subs))
	for i, s := range w.subs {
		hs[i] = s.h
	}
	return hs
}

// ActiveDocument returns the active file and its full text.
func (w *Workspace) ActiveDocument() (Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f := w.current()
	if f == nil {
		return Document{}, false
	}
	return Document{FileName: f.path, Text: string(f.text)}, true
}

// ActiveSelection returns the cursor of the active file.
func (w *Workspace) ActiveSelection() (Cursor, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f := w.current()
	if f == nil {
		return Cursor{}, false
	}
	text := f.lineText(f.line)
	return Cursor{Line: f.line, Column: UTF16Col(text, f.col), LineText: text}, true
}

func (w *Workspace) current() *file {
	if w.active < 0 || w.active >= len(w.files) {
		return nil
	}
	return w.files[w.active]
}

// Open adds a file and makes it active. Opening a path that is already open
// only switches to it.
func (w *Workspace) Open(path, text string) {
	w.mu.Lock()
	idx := -1
	for i, f := range w.files {
		if f.path == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.files = append(w.files, &file{path: path, text: []rune(text)})
		idx = len(w.files) - 1
	}
	w.active = idx
	hs := w.handlers()
	w.mu.Unlock()

	for _, h := range hs {
		h.ActiveDocumentChanged()
	}
}

// Files returns the open paths and the index of the active one.
func (w *Workspace) Files() ([]string, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, len(w.files))
	for i, f := range w.files {
		paths[i] = f.path
	}
	return paths, w.active
}

// Lines returns the lines of the active file.
func (w *Workspace) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	f := w.current()
	if f == nil {
		return nil
	}
	return strings.Split(string(f.text), "\n")
}

// Next activates the following file, wrapping around.
func (w *Workspace) Next() { w.cycle(1) }

// Prev activates the preceding file, wrapping around.
func (w *Workspace) Prev() { w.cycle(-1) }

func (w *Workspace) cycle(step int) {
	w.mu.Lock()
	if len(w.files) < 2 {
		w.mu.Unlock()
		return
	}
	w.active = (w.active + step + len(w.files)) % len(w.files)
	hs := w.handlers()
	w.mu.Unlock()

	for _, h := range hs {
		h.ActiveDocumentChanged()
	}
}

// Insert types text at the cursor.
func (w *Workspace) Insert(text string) {
	if text == "" {
		return
	}
	w.edit(func(f *file) []EditRange {
		off := f.offset(f.line, f.col)
		return []EditRange{f.replace(off, off, text)}
	})
}

// Backspace deletes the character before the cursor, joining lines at
// column 0.
func (w *Workspace) Backspace() {
	w.edit(func(f *file) []EditRange {
		off := f.offset(f.line, f.col)
		if off == 0 {
			return nil
		}
		return []EditRange{f.replace(off-1, off, "")}
	})
}

// Delete deletes the character under the cursor.
func (w *Workspace) Delete() {
	w.edit(func(f *file) []EditRange {
		off := f.offset(f.line, f.col)
		if off >= len(f.text) {
			return nil
		}
		return []EditRange{f.replace(off, off+1, "")}
	})
}

// Apply performs several replacements as one change, in the given order. Each
// range is interpreted against the text left by the ones before it; positions
// outside the document are clamped.
func (w *Workspace) Apply(changes []EditRange) {
	w.edit(func(f *file) []EditRange {
		applied := make([]EditRange, 0, len(changes))
		for _, c := range changes {
			start := f.unitOffset(c.StartLine, c.StartCol)
			end := f.unitOffset(c.EndLine, c.EndCol)
			applied = append(applied, f.replace(start, end, c.Text))
		}
		return applied
	})
}

// edit runs apply on the active file under the lock and notifies handlers of
// the ranges it changed.
func (w *Workspace) edit(apply func(f *file) []EditRange) {
	w.mu.Lock()
	f := w.current()
	if f == nil {
		w.mu.Unlock()
		return
	}
	applied := apply(f)
	hs := w.handlers()
	w.mu.Unlock()

	if len(applied) == 0 {
		return
	}
	for _, h := range hs {
		h.ContentChanged(applied)
	}
	for _, h := range hs {
		h.SelectionChanged()
	}
}

// Move moves the cursor of the active file. Handlers are notified only when
// the cursor actually moved.
func (w *Workspace) Move(m Motion) {
	w.mu.Lock()
	f := w.current()
	if f == nil {
		w.mu.Unlock()
		return
	}
	line, col := f.line, f.col
	switch m {
	case MoveLeft:
		if off := f.offset(line, col); off > 0 {
			line, col = f.position(off - 1)
		}
	case MoveRight:
		if off := f.offset(line, col); off < len(f.text) {
			line, col = f.position(off + 1)
		}
	case MoveUp:
		if line > 0 {
			line--
			col = min(col, f.lineLen(line))
		}
	case MoveDown:
		if line < f.lineCount()-1 {
			line++
			col = min(col, f.lineLen(line))
		}
	case MoveLineStart:
		col = 0
	case MoveLineEnd:
		col = f.lineLen(line)
	}
	moved := line != f.line || col != f.col
	f.line, f.col = line, col
	hs := w.handlers()
	w.mu.Unlock()

	if !moved {
		return
	}
	for _, h := range hs {
		h.SelectionChanged()
	}
}

// Save writes the active file to disk.
func (w *Workspace) Save() error {
	w.mu.Lock()
	f := w.current()
	if f == nil {
		w.mu.Unlock()
		return fmt.Errorf("no active file")
	}
	path, text := f.path, string(f.text)
	w.mu.Unlock()

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
