package model

import "testing"

func TestProtocolKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ, version string
		want         ProtocolVersion
		known        bool
	}{
		{"ssl", "2", SSLv2, true},
		{"ssl", "3", SSLv3, true},
		{"tls", "1.0", TLSv10, true},
		{"tls", "1.1", TLSv11, true},
		{"TLS", "1.2", TLSv12, true},
		{"tls", "1.3", TLSv13, true},
		{"dtls", "1.2", 0, false},
		{"tls", "1.4", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.typ+tt.version, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseProtocolKey(ProtocolKey(tt.typ, tt.version))
			if ok != tt.known {
				t.Fatalf("known = %v, want %v", ok, tt.known)
			}
			if ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLadderIsAscending(t *testing.T) {
	t.Parallel()

	ladder := Ladder()
	for i := 1; i < len(ladder); i++ {
		if !ladder[i-1].WeakerThan(ladder[i]) {
			t.Errorf("%v should be weaker than %v", ladder[i-1], ladder[i])
		}
	}

	// The returned array is a copy.
	ladder[0] = TLSv13
	if Ladder()[0] != SSLv2 {
		t.Error("modifying the returned ladder changed the package table")
	}
}

func TestProtocolVersionText(t *testing.T) {
	t.Parallel()

	for _, v := range Ladder() {
		text, err := v.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", v, err)
		}
		var got ProtocolVersion
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != v {
			t.Errorf("round trip of %v gave %v", v, got)
		}
	}

	if _, err := ProtocolVersion(42).MarshalText(); err == nil {
		t.Error("expected error for invalid protocol")
	}
	if TLSv10.String() != "tls 1.0" {
		t.Errorf("TLSv10.String() = %q", TLSv10.String())
	}
}

func TestProtocolSupport(t *testing.T) {
	t.Parallel()

	var ps ProtocolSupport
	for _, v := range Ladder() {
		if ps.Get(v) != TriStateUnknown {
			t.Errorf("fresh support reports %v for %v", ps.Get(v), v)
		}
	}

	ps.Set(TLSv12, TriStateTrue)
	ps.Set(SSLv3, TriStateFalse)
	ps.Set(TLSv10, TriStateTrue)
	ps.Set(ProtocolVersion(-1), TriStateTrue)

	if ps.Get(SSLv3) != TriStateFalse {
		t.Error("explicitly disabled protocol must stay false, not unknown")
	}
	enabled := ps.Enabled()
	if len(enabled) != 2 || enabled[0] != TLSv10 || enabled[1] != TLSv12 {
		t.Errorf("Enabled() = %v, want [tls 1.0 tls 1.2]", enabled)
	}
}
