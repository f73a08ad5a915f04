package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/Dicklesworthstone/procdash/internal/model"
	"github.com/Dicklesworthstone/procdash/internal/store"
)

const selectedMarker = "●"

type columnSpec struct {
	title  string
	column store.Column
	width  int
}

var columnSpecs = []columnSpec{
	{"PID", store.ColumnPID, 8},
	{"Name", store.ColumnName, 24},
	{"CPU %", store.ColumnCPU, 8},
	{"Mem %", store.ColumnMemory, 8},
	{"User", store.ColumnUser, 12},
	{"Threads", store.ColumnThreads, 8},
	{"Start Time", store.ColumnStartTime, 19},
}

// Columns builds the table header for width, marking the sorted column.
// The Name column absorbs any spare width.
func Columns(sort store.SortState, width int) []table.Column {
	cols := make([]table.Column, 0, len(columnSpecs)+1)
	cols = append(cols, table.Column{Title: " ", Width: 1})
	fixed := 1
	for _, c := range columnSpecs {
		fixed += c.width + 2
	}
	spare := max(0, width-fixed-2)
	for _, c := range columnSpecs {
		title, w := c.title, c.width
		if c.column == sort.Column {
			if sort.Direction == store.Descending {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		if c.column == store.ColumnName {
			w += spare
		}
		cols = append(cols, table.Column{Title: title, Width: w})
	}
	return cols
}

// Rows projects the store view into table rows in order. The row whose pid
// is selected carries the selection marker.
func Rows(view []model.ProcessRecord, selected int, hasSel bool) []table.Row {
	rows := make([]table.Row, len(view))
	for i, r := range view {
		mark := ""
		if hasSel && r.PID == selected {
			mark = selectedMarker
		}
		rows[i] = table.Row{
			mark,
			strconv.Itoa(r.PID),
			r.Name,
			strconv.FormatFloat(r.CPUPercent, 'f', 1, 64),
			strconv.FormatFloat(r.MemoryPercent, 'f', 1, 64),
			r.User,
			strconv.Itoa(r.Threads),
			r.StartTime,
		}
	}
	return rows
}

// rowPID reads the pid cell back from a projected row.
func rowPID(row table.Row) (int, bool) {
	if len(row) < 2 {
		return 0, false
	}
	pid, err := strconv.Atoi(row[1])
	return pid, err == nil
}
