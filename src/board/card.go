// Package board holds the in-memory task board: columns of ordered cards,
// the drag gesture state machine and the inline column rename editor.
//
// A board is never persisted. It lives for the duration of a user's board
// session and is reset from the seed file.
package board

import "errors"

// Status is derived from the column a card sits in.
type Status string

const (
	StatusStarted    Status = "started"
	StatusNotStarted Status = "not-started"
	StatusDone       Status = "done"
)

// Priority is display-only.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Column ids of the sample board.
const (
	ColumnNovember = "november"
	ColumnDecember = "december"
	ColumnJanuary  = "january"
	ColumnDone     = "done"
)

var (
	ErrUnknownCard     = errors.New("unknown card")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidBoard    = errors.New("invalid board")
)

// StatusForColumn maps a column id to the status any card moved into it takes.
// Unknown columns map to StatusStarted.
func StatusForColumn(columnID string) Status {
	switch columnID {
	case ColumnDone:
		return StatusDone
	case ColumnJanuary:
		return StatusNotStarted
	case ColumnNovember, ColumnDecember:
		return StatusStarted
	default:
		return StatusStarted
	}
}

// ParsePriority returns p when it is one of P1..P3 and P3 otherwise.
func ParsePriority(p string) Priority {
	switch Priority(p) {
	case PriorityP1, PriorityP2, PriorityP3:
		return Priority(p)
	default:
		return PriorityP3
	}
}

// DateRange is the planned span of a card, as free-form date strings.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Card is a task on the board. Only ColumnID and Status change after creation.
type Card struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Status       Status    `json:"status"`
	Priority     Priority  `json:"priority"`
	ColumnID     string    `json:"columnId"`
	AssignedUser string    `json:"assignedUser"`
	DateRange    DateRange `json:"dateRange"`
	Comments     int       `json:"comments"`
	Attachments  int       `json:"attachments"`
	Likes        int       `json:"likes"`
}

// Column is a named bucket of cards. Rank is the position in CardIDs.
type Column struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	CardIDs []string `json:"cardIds"`
}
