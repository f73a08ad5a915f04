package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// MetricSample is one system-wide reading pushed by the backend. A nil field
// means the backend did not report that metric in this sample.
type MetricSample struct {
	Time    time.Time `json:"-"`
	CPU     *float64  `json:"cpu,omitempty"`
	Memory  *float64  `json:"memory,omitempty"`
	Disk    *float64  `json:"disk,omitempty"`
	Network *float64  `json:"network,omitempty"` // bytes

	timeErr error
}

// TimeError reports why the sample's time could not be read. Time is left
// zero in that case and the metrics are still usable.
func (s MetricSample) TimeError() error { return s.timeErr }

type sampleWire struct {
	Time    json.RawMessage `json:"time,omitempty"`
	CPU     *float64        `json:"cpu,omitempty"`
	Memory  *float64        `json:"memory,omitempty"`
	Disk    *float64        `json:"disk,omitempty"`
	Network *float64        `json:"network,omitempty"`
}

// epochMillisCutoff separates epoch seconds from epoch milliseconds.
const epochMillisCutoff = 1e12

var sampleTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	time.RFC1123,
	time.RFC1123Z,
}

func (s *MetricSample) UnmarshalJSON(data []byte) error {
	var w sampleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ts, err := parseSampleTime(w.Time)
	*s = MetricSample{Time: ts, CPU: w.CPU, Memory: w.Memory, Disk: w.Disk, Network: w.Network, timeErr: err}
	return nil
}

func (s MetricSample) MarshalJSON() ([]byte, error) {
	w := sampleWire{CPU: s.CPU, Memory: s.Memory, Disk: s.Disk, Network: s.Network}
	if !s.Time.IsZero() {
		w.Time, _ = json.Marshal(s.Time.Format(time.RFC3339Nano))
	}
	return json.Marshal(w)
}

func parseSampleTime(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		for _, layout := range sampleTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised sample time %q", s)
	}
	n, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised sample time %s: %w", raw, err)
	}
	if n >= epochMillisCutoff {
		return time.UnixMilli(int64(n)), nil
	}
	sec := int64(n)
	return time.Unix(sec, int64((n-float64(sec))*1e9)), nil
}

// Float returns a pointer to v, for building samples.
func Float(v float64) *float64 { return &v }
