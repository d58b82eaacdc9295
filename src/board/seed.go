package board

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed default_board.toml
var defaultSeed []byte

// Seed is the on-disk description of a fresh board.
type Seed struct {
	Columns []SeedColumn `toml:"columns"`
	Cards   []SeedCard   `toml:"cards"`
}

type SeedColumn struct {
	ID    string `toml:"id"`
	Title string `toml:"title"`
}

type SeedCard struct {
	ID           string `toml:"id"`
	Title        string `toml:"title"`
	Column       string `toml:"column"`
	Status       string `toml:"status"`
	Priority     string `toml:"priority"`
	AssignedUser string `toml:"assigned_user"`
	Start        string `toml:"start"`
	End          string `toml:"end"`
	Comments     int    `toml:"comments"`
	Attachments  int    `toml:"attachments"`
	Likes        int    `toml:"likes"`
}

// ParseSeed decodes a TOML seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse board seed: %w", err)
	}
	if len(s.Columns) == 0 {
		return nil, fmt.Errorf("%w: seed defines no columns", ErrInvalidBoard)
	}
	return &s, nil
}

// DefaultSeed returns the seed compiled into the binary.
func DefaultSeed() *Seed {
	s, err := ParseSeed(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("embedded board seed: %v", err))
	}
	return s
}

// LoadSeed reads a seed file. An empty path or a missing file yields the
// embedded default.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSeed(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read board seed %s: %w", path, err)
	}
	return ParseSeed(data)
}

// Build creates a new board from the seed. Card statuses follow their column;
// a seed card whose status names another column's status is rejected.
func (s *Seed) Build() (*Board, error) {
	columns := make([]Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		columns = append(columns, Column{ID: c.ID, Title: c.Title})
	}
	cards := make([]Card, 0, len(s.Cards))
	for _, c := range s.Cards {
		want := StatusForColumn(c.Column)
		if c.Status != "" && Status(c.Status) != want {
			return nil, fmt.Errorf("%w: card %q has status %q but column %q implies %q", ErrInvalidBoard, c.ID, c.Status, c.Column, want)
		}
		cards = append(cards, Card{
			ID:           c.ID,
			Title:        c.Title,
			Status:       want,
			Priority:     Priority(c.Priority),
			ColumnID:     c.Column,
			AssignedUser: c.AssignedUser,
			DateRange:    DateRange{Start: c.Start, End: c.End},
			Comments:     c.Comments,
			Attachments:  c.Attachments,
			Likes:        c.Likes,
		})
	}
	return New(columns, cards)
}
