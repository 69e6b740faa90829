package api

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "rfc3339",
			in:   `"2026-02-01T10:30:00Z"`,
			want: time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "no timezone",
			in:   `"2026-02-01T10:30:00"`,
			want: time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "microseconds no timezone",
			in:   `"2026-02-01T10:30:00.123456"`,
			want: time.Date(2026, 2, 1, 10, 30, 0, 123456000, time.UTC),
		},
		{
			name: "null",
			in:   `null`,
			want: time.Time{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tc.in), &ts); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tc.in, err)
			}
			if !ts.Time.Equal(tc.want) {
				t.Errorf("parsed %v, want %v", ts.Time, tc.want)
			}
		})
	}
}

func TestTimestampUnmarshalRejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"not a time"`), &ts); err == nil {
		t.Error("garbage timestamp accepted")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "all", want: ""},
		{in: "pending", want: StatusPending},
		{in: " Completed ", want: StatusCompleted},
		{in: "FAILED", want: StatusFailed},
		{in: "done", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseStatus(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseStatus(%q) accepted", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStatus(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStatusRankNeverRegresses(t *testing.T) {
	order := []Status{StatusPending, StatusProcessing, StatusCompleted}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() < order[i-1].Rank() {
			t.Errorf("Rank(%s)=%d < Rank(%s)=%d", order[i], order[i].Rank(), order[i-1], order[i-1].Rank())
		}
	}
	if StatusFailed.Rank() != StatusCompleted.Rank() {
		t.Error("terminal states should share a rank")
	}
	if !StatusFailed.Terminal() || !StatusCompleted.Terminal() {
		t.Error("completed and failed must be terminal")
	}
	if StatusProcessing.Terminal() {
		t.Error("processing reported terminal")
	}
}

func TestStatsCount(t *testing.T) {
	stats := CollectionStats{Total: 10, Pending: 1, Processing: 2, Completed: 3, Failed: 4}
	for _, status := range Statuses {
		if stats.Count(status) == 0 {
			t.Errorf("Count(%s) = 0", status)
		}
	}
	if got := stats.Pending + stats.Processing + stats.Completed + stats.Failed; got != stats.Total {
		t.Errorf("buckets sum to %d, total is %d", got, stats.Total)
	}
}
