package model

import (
	"encoding/json"
	"testing"
)

func TestParseTriState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want TriState
	}{
		{"1", TriStateTrue},
		{"0", TriStateFalse},
		{"true", TriStateTrue},
		{"false", TriStateFalse},
		{" TRUE ", TriStateTrue},
		{"", TriStateUnknown},
		{"maybe", TriStateUnknown},
		{"2", TriStateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := ParseTriState(tt.in); got != tt.want {
				t.Errorf("ParseTriState(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTriStateZeroValueIsUnknown(t *testing.T) {
	t.Parallel()

	var ts TriState
	if ts != TriStateUnknown {
		t.Errorf("zero value = %v, want unknown", ts)
	}
	if ts.IsKnown() {
		t.Error("zero value must not be known")
	}
	if ts.IsTrue() {
		t.Error("zero value must not be true")
	}
}

func TestTriStateText(t *testing.T) {
	t.Parallel()

	for _, ts := range []TriState{TriStateUnknown, TriStateTrue, TriStateFalse} {
		data, err := json.Marshal(ts)
		if err != nil {
			t.Fatalf("marshal %v: %v", ts, err)
		}

		var got TriState
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got != ts {
			t.Errorf("round trip of %v gave %v", ts, got)
		}
	}

	if TriStateTrue.String() != "yes" || TriStateFalse.String() != "no" || TriStateUnknown.String() != "unknown" {
		t.Error("unexpected String output")
	}
}
