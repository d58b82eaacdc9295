package board

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Board is an ordered set of columns, each holding an ordered sequence of cards.
// It is not safe for concurrent use.
type Board struct {
	columns []*Column
	cards   map[string]*Card
}

// New builds a board from columns and cards. Cards are appended to their
// column in the order given; a card with an empty status takes the status
// implied by its column.
func New(columns []Column, cards []Card) (*Board, error) {
	b := &Board{cards: make(map[string]*Card, len(cards))}
	for _, c := range columns {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: column without id", ErrInvalidBoard)
		}
		if b.column(c.ID) != nil {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidBoard, c.ID)
		}
		b.columns = append(b.columns, &Column{ID: c.ID, Title: c.Title})
	}
	for _, c := range cards {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: card without id", ErrInvalidBoard)
		}
		if _, dup := b.cards[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate card %q", ErrInvalidBoard, c.ID)
		}
		col := b.column(c.ColumnID)
		if col == nil {
			return nil, fmt.Errorf("%w: card %q references %w %q", ErrInvalidBoard, c.ID, ErrUnknownColumn, c.ColumnID)
		}
		card := c
		if card.Status == "" {
			card.Status = StatusForColumn(card.ColumnID)
		}
		card.Priority = ParsePriority(string(card.Priority))
		b.cards[card.ID] = &card
		col.CardIDs = append(col.CardIDs, card.ID)
	}
	return b, nil
}

func (b *Board) column(id string) *Column {
	for _, c := range b.columns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// CardCount returns the number of cards across all columns.
func (b *Board) CardCount() int {
	n := 0
	for _, c := range b.columns {
		n += len(c.CardIDs)
	}
	return n
}

// Card returns a copy of the card with the given id.
func (b *Board) Card(id string) (Card, bool) {
	c, ok := b.cards[id]
	if !ok {
		return Card{}, false
	}
	return *c, true
}

// Column returns a copy of the column with the given id.
func (b *Board) Column(id string) (Column, bool) {
	c := b.column(id)
	if c == nil {
		return Column{}, false
	}
	return Column{ID: c.ID, Title: c.Title, CardIDs: slices.Clone(c.CardIDs)}, true
}

// Columns returns copies of all columns in board order.
func (b *Board) Columns() []Column {
	out := make([]Column, 0, len(b.columns))
	for _, c := range b.columns {
		out = append(out, Column{ID: c.ID, Title: c.Title, CardIDs: slices.Clone(c.CardIDs)})
	}
	return out
}

// MoveCard removes the card from its column and inserts it at destIndex in
// destColumnID, clamped to [0, len]. Changing column rewrites the card status.
// The board is unchanged when the card or the destination column is unknown.
func (b *Board) MoveCard(cardID, destColumnID string, destIndex int) error {
	card, ok := b.cards[cardID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCard, cardID)
	}
	dest := b.column(destColumnID)
	if dest == nil {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, destColumnID)
	}
	src := b.column(card.ColumnID)
	src.CardIDs = removeID(src.CardIDs, cardID)

	destIndex = max(0, min(destIndex, len(dest.CardIDs)))
	dest.CardIDs = slices.Insert(dest.CardIDs, destIndex, cardID)

	if dest.ID != src.ID {
		card.ColumnID = dest.ID
		card.Status = StatusForColumn(dest.ID)
	}
	return nil
}

// MoveCardBefore moves cardID so that it sits immediately before targetCardID,
// in the target's column.
func (b *Board) MoveCardBefore(cardID, targetCardID string) error {
	if _, ok := b.cards[cardID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCard, cardID)
	}
	target, ok := b.cards[targetCardID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCard, targetCardID)
	}
	if cardID == targetCardID {
		return nil
	}
	dest := b.column(target.ColumnID)
	idx := slices.Index(removeID(slices.Clone(dest.CardIDs), cardID), targetCardID)
	return b.MoveCard(cardID, dest.ID, idx)
}

// ReorderWithinColumn moves the card at fromIndex to toIndex inside one column.
// toIndex is clamped; statuses are never touched.
func (b *Board) ReorderWithinColumn(columnID string, fromIndex, toIndex int) error {
	col := b.column(columnID)
	if col == nil {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	if fromIndex < 0 || fromIndex >= len(col.CardIDs) {
		return fmt.Errorf("%w: from %d in column %q of %d cards", ErrIndexOutOfRange, fromIndex, columnID, len(col.CardIDs))
	}
	id := col.CardIDs[fromIndex]
	col.CardIDs = slices.Delete(col.CardIDs, fromIndex, fromIndex+1)
	toIndex = max(0, min(toIndex, len(col.CardIDs)))
	col.CardIDs = slices.Insert(col.CardIDs, toIndex, id)
	return nil
}

// RenameColumn commits a new column title. Blank titles are ignored and
// reported as unchanged.
func (b *Board) RenameColumn(columnID, title string) (bool, error) {
	col := b.column(columnID)
	if col == nil {
		return false, fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	committed, ok := CommitTitle(col.Title, title)
	col.Title = committed
	return ok, nil
}

// NewCard holds the user supplied fields of a card being created.
type NewCard struct {
	Title        string
	Priority     Priority
	ColumnID     string
	AssignedUser string
	DateRange    DateRange
}

// AddCard appends a card to the end of its column. The id is the creation
// time in milliseconds, bumped until it is unique on this board.
func (b *Board) AddCard(in NewCard, now time.Time) (Card, error) {
	col := b.column(in.ColumnID)
	if col == nil {
		return Card{}, fmt.Errorf("%w: %q", ErrUnknownColumn, in.ColumnID)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Card{}, fmt.Errorf("%w: card title is required", ErrInvalidBoard)
	}
	n := now.UnixMilli()
	id := strconv.FormatInt(n, 10)
	for b.cards[id] != nil {
		n++
		id = strconv.FormatInt(n, 10)
	}
	card := &Card{
		ID:           id,
		Title:        title,
		Status:       StatusForColumn(col.ID),
		Priority:     ParsePriority(string(in.Priority)),
		ColumnID:     col.ID,
		AssignedUser: in.AssignedUser,
		DateRange:    in.DateRange,
	}
	b.cards[id] = card
	col.CardIDs = append(col.CardIDs, id)
	return *card, nil
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	out := &Board{cards: make(map[string]*Card, len(b.cards))}
	for _, c := range b.columns {
		out.columns = append(out.columns, &Column{ID: c.ID, Title: c.Title, CardIDs: slices.Clone(c.CardIDs)})
	}
	for id, c := range b.cards {
		card := *c
		out.cards[id] = &card
	}
	return out
}

// ColumnView is a column with its cards resolved, in rank order.
type ColumnView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cards []Card `json:"cards"`
}

// View is the JSON representation of a board.
type View struct {
	Columns   []ColumnView `json:"columns"`
	CardCount int          `json:"cardCount"`
}

// Snapshot resolves every column into its cards.
func (b *Board) Snapshot() View {
	v := View{Columns: make([]ColumnView, 0, len(b.columns)), CardCount: b.CardCount()}
	for _, c := range b.columns {
		cv := ColumnView{ID: c.ID, Title: c.Title, Cards: make([]Card, 0, len(c.CardIDs))}
		for _, id := range c.CardIDs {
			cv.Cards = append(cv.Cards, *b.cards[id])
		}
		v.Columns = append(v.Columns, cv)
	}
	return v
}

func removeID(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
