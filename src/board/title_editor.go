package board

import "strings"

// EditorState is the state of a column title editor.
type EditorState int

const (
	Viewing EditorState = iota
	Editing
)

func (s EditorState) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// CommitTitle returns the trimmed draft when it is non-blank, otherwise the
// current title. The bool reports whether the draft was accepted.
func CommitTitle(current, draft string) (string, bool) {
	trimmed := strings.TrimSpace(draft)
	if trimmed == "" {
		return current, false
	}
	return trimmed, true
}

// TitleEditor is the inline rename state of a single column.
type TitleEditor struct {
	state EditorState
	title string
	draft string
}

func NewTitleEditor(title string) *TitleEditor {
	return &TitleEditor{title: title}
}

func (e *TitleEditor) State() EditorState { return e.state }
func (e *TitleEditor) Title() string      { return e.title }
func (e *TitleEditor) Draft() string      { return e.draft }

// BeginEdit enters Editing with the draft seeded from the current title.
func (e *TitleEditor) BeginEdit() {
	if e.state == Editing {
		return
	}
	e.state = Editing
	e.draft = e.title
}

// SetDraft replaces the text being edited. Ignored while viewing.
func (e *TitleEditor) SetDraft(text string) {
	if e.state == Editing {
		e.draft = text
	}
}

// Save commits the draft and returns to Viewing. A blank draft leaves the
// title unchanged. It returns the resulting title and whether it was committed.
func (e *TitleEditor) Save() (string, bool) {
	if e.state != Editing {
		return e.title, false
	}
	title, ok := CommitTitle(e.title, e.draft)
	e.title = title
	e.state = Viewing
	e.draft = ""
	return e.title, ok
}

// Cancel discards the draft and returns to Viewing.
func (e *TitleEditor) Cancel() {
	e.state = Viewing
	e.draft = ""
}

// HandleKey maps Enter to Save and Escape to Cancel. Other keys are ignored.
func (e *TitleEditor) HandleKey(key string) (string, bool) {
	switch key {
	case "Enter":
		return e.Save()
	case "Escape":
		e.Cancel()
	}
	return e.title, false
}
