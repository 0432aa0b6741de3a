// Package editor describes the host editor as seen by the mirror session:
// a read-only view of the active document and selection, and a source of
// change notifications. Workspace is an in-memory implementation used by the
// terminal front end and by tests.
package editor

// Document is the active file at the moment it is read.
type Document struct {
	FileName string
	Text     string
}

// Cursor is the anchor of the active selection. Line and Column are zero-based;
// Column counts UTF-16 code units, the unit peers index JavaScript strings by.
type Cursor struct {
	Line     int
	Column   int
	LineText string
}

// EditRange is one content change: the text between Start and End was
// replaced by Text. Lines are zero-based; columns count UTF-16 code units as in
// Cursor.
type EditRange struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	Text      string
}

// Provider returns the current editor state. Values are computed on every call
// and never cached by callers.
type Provider interface {
	ActiveDocument() (Document, bool)
	ActiveSelection() (Cursor, bool)
}

// Handler receives editor notifications. Implementations must not block for
// long: handlers run on the goroutine that made the edit.
type Handler interface {
	SelectionChanged()
	ActiveDocumentChanged()
	ContentChanged(changes []EditRange)
}

// Source delivers editor notifications to subscribed handlers until the
// returned function is called.
type Source interface {
	Subscribe(h Handler) (unsubscribe func())
}
