package store

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"github.com/Dicklesworthstone/procdash/internal/model"
)

// Column names a sortable ProcessRecord field by its wire name.
type Column string

const (
	ColumnPID       Column = "pid"
	ColumnName      Column = "name"
	ColumnCPU       Column = "cpu_percent"
	ColumnMemory    Column = "memory_percent"
	ColumnUser      Column = "user"
	ColumnThreads   Column = "threads"
	ColumnStartTime Column = "start_time"
)

// Columns lists every sortable column in table order.
var Columns = []Column{ColumnPID, ColumnName, ColumnCPU, ColumnMemory, ColumnUser, ColumnThreads, ColumnStartTime}

func (c Column) Valid() bool { return slices.Contains(Columns, c) }

// Numeric reports whether c is compared as a float.
func (c Column) Numeric() bool {
	switch c {
	case ColumnPID, ColumnCPU, ColumnMemory, ColumnThreads:
		return true
	}
	return false
}

// Direction is 1 for ascending and -1 for descending.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

type SortState struct {
	Column    Column // empty when unsorted
	Direction Direction
}

// Toggle flips the direction for the active column and resets to ascending
// for any other.
func (s SortState) Toggle(c Column) SortState {
	if s.Column == c {
		return SortState{Column: c, Direction: -s.Direction}
	}
	return SortState{Column: c, Direction: Ascending}
}

func sortRecords(records []model.ProcessRecord, st SortState) {
	if st.Column == "" {
		return
	}
	dir := int(st.Direction)
	slices.SortStableFunc(records, func(a, b model.ProcessRecord) int {
		return dir * compareColumn(a, b, st.Column)
	})
}

func compareColumn(a, b model.ProcessRecord, c Column) int {
	if c.Numeric() {
		return compareFloat(numericValue(a, c), numericValue(b, c))
	}
	return cmp.Compare(stringValue(a, c), stringValue(b, c))
}

// compareFloat orders NaN as equal to everything instead of panicking or
// pushing it to one end.
func compareFloat(a, b float64) int {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func numericValue(r model.ProcessRecord, c Column) float64 {
	switch c {
	case ColumnPID:
		return float64(r.PID)
	case ColumnCPU:
		return r.CPUPercent
	case ColumnMemory:
		return r.MemoryPercent
	case ColumnThreads:
		return float64(r.Threads)
	}
	return math.NaN()
}

func stringValue(r model.ProcessRecord, c Column) string {
	switch c {
	case ColumnName:
		return r.Name
	case ColumnUser:
		return r.User
	case ColumnStartTime:
		return r.StartTime
	case ColumnPID:
		return strconv.Itoa(r.PID)
	case ColumnThreads:
		return strconv.Itoa(r.Threads)
	case ColumnCPU:
		return formatFloat(r.CPUPercent)
	case ColumnMemory:
		return formatFloat(r.MemoryPercent)
	}
	return ""
}
