package graph

import (
	"testing"
	"time"
)

func TestNewRelationNormalizesTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	local := time.Date(2025, 6, 1, 14, 0, 0, 0, loc)
	r, err := NewRelation("Marco", "Go", "has_skill", 0.9, local)
	if err != nil {
		t.Fatalf("NewRelation: %v", err)
	}
	if r.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp location = %v, want UTC", r.Timestamp.Location())
	}
	if !r.Timestamp.Equal(local) {
		t.Error("timestamp instant changed during normalization")
	}
}

func TestNewRelationDefaultsTimestamp(t *testing.T) {
	before := time.Now().UTC()
	r, err := NewRelation("Marco", "Go", "has_skill", 1.0, time.Time{})
	if err != nil {
		t.Fatalf("NewRelation: %v", err)
	}
	if r.Timestamp.Before(before) {
		t.Error("zero timestamp should default to now")
	}
}

func TestNewRelationRejectsEmptyEndpoints(t *testing.T) {
	if _, err := NewRelation("", "Go", "has_skill", 1.0, time.Time{}); err == nil {
		t.Error("expected error for empty source")
	}
	if _, err := NewRelation("Marco", "", "has_skill", 1.0, time.Time{}); err == nil {
		t.Error("expected error for empty target")
	}
}

func TestRelationKeyExcludesWeightAndTimestamp(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a, _ := NewRelation("Marco", "Go", "has_skill", 0.5, t0)
	b, _ := NewRelation("Marco", "Go", "has_skill", 0.9, t0.Add(time.Hour))

	if a.Key() != b.Key() {
		t.Error("relations with same triple but different weight/timestamp should share identity")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(time.Time) bool
	}{
		{
			name:  "rfc3339 with offset",
			input: "2025-06-01T14:00:00+02:00",
			check: func(ts time.Time) bool {
				return ts.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
			},
		},
		{
			name:  "naive assumed utc",
			input: "2025-06-01T12:00:00",
			check: func(ts time.Time) bool {
				return ts.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
			},
		},
		{
			name:  "date only",
			input: "2025-06-01",
			check: func(ts time.Time) bool {
				return ts.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
			},
		},
		{name: "garbage", input: "not a time", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !tt.check(got) {
				t.Errorf("ParseTimestamp(%q) = %v", tt.input, got)
			}
		})
	}
}
