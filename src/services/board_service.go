package services

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/homedash/backend/src/board"
)

// BoardService keeps one in-memory board per user. Boards expire after the
// session TTL of inactivity and are rebuilt from the seed on next access.
type BoardService struct {
	mu       sync.Mutex
	seed     *board.Seed
	sessions *cache.Cache
	ttl      time.Duration
	now      func() time.Time
}

func NewBoardService(seed *board.Seed, ttl time.Duration) *BoardService {
	if seed == nil {
		seed = board.DefaultSeed()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &BoardService{
		seed:     seed,
		sessions: cache.New(ttl, ttl/2),
		ttl:      ttl,
		now:      time.Now,
	}
}

func sessionKey(userID int64) string {
	return "board:" + strconv.FormatInt(userID, 10)
}

// withBoard runs fn on the user's board under the service lock and refreshes
// the session expiry.
func (s *BoardService) withBoard(userID int64, fn func(b *board.Board) error) (board.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(userID)
	var b *board.Board
	if v, found := s.sessions.Get(key); found {
		b = v.(*board.Board)
	} else {
		fresh, err := s.seed.Build()
		if err != nil {
			return board.View{}, fmt.Errorf("build board from seed: %w", err)
		}
		b = fresh
	}
	s.sessions.Set(key, b, s.ttl)

	if fn != nil {
		if err := fn(b); err != nil {
			return board.View{}, err
		}
	}
	return b.Snapshot(), nil
}

func (s *BoardService) Get(userID int64) (board.View, error) {
	return s.withBoard(userID, nil)
}

func (s *BoardService) MoveCard(userID int64, cardID, destColumnID string, destIndex int) (board.View, error) {
	return s.withBoard(userID, func(b *board.Board) error {
		return b.MoveCard(cardID, destColumnID, destIndex)
	})
}

func (s *BoardService) Reorder(userID int64, columnID string, fromIndex, toIndex int) (board.View, error) {
	return s.withBoard(userID, func(b *board.Board) error {
		return b.ReorderWithinColumn(columnID, fromIndex, toIndex)
	})
}

// Drag replays a complete drag gesture. moved is false when the drop had no
// valid target; that is not an error.
func (s *BoardService) Drag(userID int64, cardID string, target board.DropTarget) (view board.View, moved bool, err error) {
	view, err = s.withBoard(userID, func(b *board.Board) error {
		d := board.NewDragController(b)
		if err := d.DragStart(cardID); err != nil {
			return err
		}
		moved = d.DragEnd(target)
		return nil
	})
	return view, moved, err
}

// RenameColumn commits title as the column's new name, as if typed into the
// inline editor and confirmed with key. Enter (or an empty key) saves, Escape
// discards. A blank title leaves the column unchanged.
func (s *BoardService) RenameColumn(userID int64, columnID, title, key string) (view board.View, changed bool, err error) {
	if key == "" {
		key = "Enter"
	}
	view, err = s.withBoard(userID, func(b *board.Board) error {
		col, ok := b.Column(columnID)
		if !ok {
			return fmt.Errorf("%w: %q", board.ErrUnknownColumn, columnID)
		}
		editor := board.NewTitleEditor(col.Title)
		editor.BeginEdit()
		editor.SetDraft(title)
		committed, saved := editor.HandleKey(key)
		if !saved {
			return nil
		}
		var rerr error
		changed, rerr = b.RenameColumn(columnID, committed)
		return rerr
	})
	return view, changed, err
}

func (s *BoardService) AddCard(userID int64, in board.NewCard) (card board.Card, view board.View, err error) {
	view, err = s.withBoard(userID, func(b *board.Board) error {
		var aerr error
		card, aerr = b.AddCard(in, s.now())
		return aerr
	})
	return card, view, err
}

// Reset discards the user's board so the next access starts from the seed.
func (s *BoardService) Reset(userID int64) (board.View, error) {
	s.mu.Lock()
	s.sessions.Delete(sessionKey(userID))
	s.mu.Unlock()
	return s.withBoard(userID, nil)
}

// ActiveSessions counts boards currently held in memory.
func (s *BoardService) ActiveSessions() int {
	return s.sessions.ItemCount()
}

// Flush drops every board.
func (s *BoardService) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Flush()
}
