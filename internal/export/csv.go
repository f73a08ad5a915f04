// Package export writes process snapshots to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Dicklesworthstone/procdash/internal/model"
)

// Header is the first CSV row.
var Header = []string{"PID", "Name", "CPU %", "Memory %", "User", "Threads", "Start Time"}

// FileName is the timestamped export name for now.
func FileName(now time.Time) string {
	return "process_snapshot_" + now.UTC().Format("20060102T150405.000Z") + ".csv"
}

// WriteCSV writes Header and one row per record, in order.
func WriteCSV(w io.Writer, records []model.ProcessRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.PID),
			r.Name,
			strconv.FormatFloat(r.CPUPercent, 'f', -1, 64),
			strconv.FormatFloat(r.MemoryPercent, 'f', -1, 64),
			r.User,
			strconv.Itoa(r.Threads),
			r.StartTime,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToFile writes records into a new timestamped file under dir and returns
// its path.
func ToFile(dir string, records []model.ProcessRecord, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err = WriteCSV(f, records); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
