package diag

import "testing"

func TestHexDump(t *testing.T) {
	cases := []struct {
		in   []byte
		want string
	}{
		{nil, ""},
		{[]byte{0x00}, "00"},
		{[]byte{0xDE, 0xAD, 0xBE, 0xEF}, "DE AD BE EF"},
	}
	for _, c := range cases {
		if got := HexDump(c.in); got != c.want {
			t.Errorf("HexDump(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestChannelLoggerDropsRatherThanBlocks(t *testing.T) {
	l := NewChannelLogger(2)
	for i := 0; i < 10; i++ {
		l.Info(int64(i), "event %d", i)
	}
	// Must not deadlock and must retain capacity-bounded records.
	count := 0
	for {
		select {
		case <-l.C():
			count++
		default:
			if count > 2 {
				t.Fatalf("expected at most buffered records, got %d", count)
			}
			return
		}
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityFatal.String() != "fatal" {
		t.Fatalf("unexpected severity string: %s", SeverityFatal.String())
	}
	if KindOutOfRange.String() != "out_of_range" {
		t.Fatalf("unexpected kind string: %s", KindOutOfRange.String())
	}
}
