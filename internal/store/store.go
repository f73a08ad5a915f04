// Package store holds the latest process snapshot and the filtered, sorted
// view derived from it.
package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Dicklesworthstone/procdash/internal/model"
)

var ErrUnknownColumn = errors.New("unknown sort column")

// Store owns the process snapshot. View is always the projection of All
// under the current search term and sort state.
type Store struct {
	all      []model.ProcessRecord
	view     []model.ProcessRecord
	term     string
	sort     SortState
	selected int
	hasSel   bool
}

func New() *Store {
	return &Store{sort: SortState{Direction: Ascending}}
}

// Load replaces the snapshot and reapplies the current filter and sort.
func (s *Store) Load(records []model.ProcessRecord) {
	s.all = slices.Clone(records)
	s.recompute()
}

// SetFilter normalises term and rebuilds the view from the snapshot.
func (s *Store) SetFilter(term string) {
	s.term = strings.ToLower(strings.TrimSpace(term))
	s.recompute()
}

// SetSort toggles the direction when column is already active, otherwise
// switches to column ascending, then stably reorders the current view.
func (s *Store) SetSort(column Column) error {
	if !column.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	s.sort = s.sort.Toggle(column)
	sortRecords(s.view, s.sort)
	return nil
}

func (s *Store) Select(pid int) {
	s.selected, s.hasSel = pid, true
}

func (s *Store) ClearSelection() {
	s.selected, s.hasSel = 0, false
}

// Selected reports the selected pid, which need not be in the view.
func (s *Store) Selected() (int, bool) { return s.selected, s.hasSel }

// All returns the latest unfiltered snapshot in fetch order.
func (s *Store) All() []model.ProcessRecord { return s.all }

// View returns the filtered and sorted records. Callers must not modify it.
func (s *Store) View() []model.ProcessRecord { return s.view }

func (s *Store) Term() string    { return s.term }
func (s *Store) Sort() SortState { return s.sort }
func (s *Store) Len() int        { return len(s.all) }
func (s *Store) ViewLen() int    { return len(s.view) }
func (s *Store) Filtering() bool { return s.term != "" }

func (s *Store) recompute() {
	if s.term == "" {
		s.view = slices.Clone(s.all)
	} else {
		s.view = s.view[:0:0]
		for _, r := range s.all {
			if Matches(r, s.term) {
				s.view = append(s.view, r)
			}
		}
	}
	if s.sort.Column != "" {
		sortRecords(s.view, s.sort)
	}
}
