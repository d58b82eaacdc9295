package board

import (
	"fmt"
	"slices"
)

// DragState is the state of a drag gesture.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// TargetKind says what a drop resolved to.
type TargetKind string

const (
	TargetNone   TargetKind = ""
	TargetColumn TargetKind = "column"
	TargetCard   TargetKind = "card"
)

// DropTarget is where a drag ended. An empty Kind means no valid target.
type DropTarget struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// DragController turns a drag gesture into a single board mutation on release.
type DragController struct {
	board  *Board
	state  DragState
	active string
}

func NewDragController(b *Board) *DragController {
	return &DragController{board: b}
}

func (d *DragController) State() DragState     { return d.state }
func (d *DragController) ActiveCardID() string { return d.active }

// DragStart picks up a card. Starting while dragging replaces the active card.
func (d *DragController) DragStart(cardID string) error {
	if _, ok := d.board.cards[cardID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCard, cardID)
	}
	d.state = Dragging
	d.active = cardID
	return nil
}

// DragEnd drops the active card and returns to Idle. Dropping on a column
// appends to it; dropping on a card inserts immediately before that card.
// A missing or unresolvable target leaves the board untouched and reports false.
func (d *DragController) DragEnd(target DropTarget) bool {
	if d.state != Dragging {
		return false
	}
	cardID := d.active
	d.Cancel()

	card := d.board.cards[cardID]
	switch target.Kind {
	case TargetColumn:
		col := d.board.column(target.ID)
		if col == nil {
			return false
		}
		if col.ID == card.ColumnID {
			from := slices.Index(col.CardIDs, cardID)
			return d.board.ReorderWithinColumn(col.ID, from, len(col.CardIDs)-1) == nil
		}
		return d.board.MoveCard(cardID, col.ID, len(col.CardIDs)) == nil
	case TargetCard:
		over, ok := d.board.cards[target.ID]
		if !ok {
			return false
		}
		if over.ID == cardID {
			return true
		}
		if over.ColumnID == card.ColumnID {
			ids := d.board.column(card.ColumnID).CardIDs
			from := slices.Index(ids, cardID)
			to := slices.Index(ids, over.ID)
			if from < to {
				to--
			}
			return d.board.ReorderWithinColumn(card.ColumnID, from, to) == nil
		}
		return d.board.MoveCardBefore(cardID, over.ID) == nil
	default:
		return false
	}
}

// Cancel abandons the gesture without touching the board.
func (d *DragController) Cancel() {
	d.state = Idle
	d.active = ""
}
