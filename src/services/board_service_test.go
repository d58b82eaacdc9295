package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/homedash/backend/src/board"
)

func findCard(v board.View, id string) (board.Card, string, bool) {
	for _, col := range v.Columns {
		for _, c := range col.Cards {
			if c.ID == id {
				return c, col.ID, true
			}
		}
	}
	return board.Card{}, "", false
}

func TestBoardServiceMoveRewritesStatus(t *testing.T) {
	svc := NewBoardService(nil, time.Hour)

	view, err := svc.Get(1)
	require.NoError(t, err)
	card, col, ok := findCard(view, "5")
	require.True(t, ok)
	require.Equal(t, board.ColumnJanuary, col)
	require.Equal(t, board.StatusNotStarted, card.Status)

	view, err = svc.MoveCard(1, "5", board.ColumnDone, 0)
	require.NoError(t, err)
	card, _, _ = findCard(view, "5")
	assert.Equal(t, board.StatusDone, card.Status)

	view, err = svc.MoveCard(1, "5", board.ColumnNovember, 0)
	require.NoError(t, err)
	card, _, _ = findCard(view, "5")
	assert.Equal(t, board.StatusStarted, card.Status)
}

func TestBoardServiceIsolatesUsers(t *testing.T) {
	svc := NewBoardService(nil, time.Hour)

	_, err := svc.MoveCard(1, "1", board.ColumnDone, 0)
	require.NoError(t, err)

	other, err := svc.Get(2)
	require.NoError(t, err)
	_, col, _ := findCard(other, "1")
	assert.Equal(t, board.ColumnNovember, col)
	assert.Equal(t, 2, svc.ActiveSessions())
}

func TestBoardServiceResetRestoresSeed(t *testing.T) {
	svc := NewBoardService(nil, time.Hour)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	card, view, err := svc.AddCard(1, board.NewCard{Title: "New", ColumnID: board.ColumnDone})
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", card.ID)
	assert.Equal(t, 8, view.CardCount)

	_, changed, err := svc.RenameColumn(1, board.ColumnDone, "  Finished ", "")
	require.NoError(t, err)
	assert.True(t, changed)

	view, changed, err = svc.RenameColumn(1, board.ColumnDone, "Archive", "Escape")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "Finished", view.Columns[3].Title)

	_, changed, err = svc.RenameColumn(1, board.ColumnDone, "   ", "Enter")
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = svc.RenameColumn(1, "backlog", "x", "")
	assert.ErrorIs(t, err, board.ErrUnknownColumn)

	view, err = svc.Reset(1)
	require.NoError(t, err)
	assert.Equal(t, 7, view.CardCount)
	assert.Equal(t, "Done", view.Columns[3].Title)
}

func TestBoardServiceDragAndErrors(t *testing.T) {
	svc := NewBoardService(nil, time.Hour)

	view, moved, err := svc.Drag(1, "6", board.DropTarget{Kind: board.TargetCard, ID: "4"})
	require.NoError(t, err)
	assert.True(t, moved)
	_, col, _ := findCard(view, "6")
	assert.Equal(t, board.ColumnDecember, col)

	_, moved, err = svc.Drag(1, "6", board.DropTarget{})
	require.NoError(t, err)
	assert.False(t, moved)

	_, _, err = svc.Drag(1, "ghost", board.DropTarget{Kind: board.TargetColumn, ID: board.ColumnDone})
	assert.ErrorIs(t, err, board.ErrUnknownCard)

	_, err = svc.Reorder(1, "backlog", 0, 1)
	assert.ErrorIs(t, err, board.ErrUnknownColumn)

	svc.Flush()
	assert.Zero(t, svc.ActiveSessions())
}
