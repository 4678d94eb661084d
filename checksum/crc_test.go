package checksum

import "testing"

func TestKnownVectors(t *testing.T) {
	cases := []struct {
		input string
		want  uint32
	}{
		{"123456789", 0xCBF43926},
		{"a", 0xE8B7BE43},
		{"", 0x00000000},
	}
	for _, c := range cases {
		if got := Sum([]byte(c.input)); got != c.want {
			t.Errorf("Sum(%q) = %#x, want %#x", c.input, got, c.want)
		}
	}
}

func TestTableSpotChecks(t *testing.T) {
	cases := []struct {
		idx  int
		want uint32
	}{
		{0, 0x00000000},
		{1, 0x77073096},
		{255, 0x2D02EF8D},
	}
	for _, c := range cases {
		if got := Table[c.idx]; got != c.want {
			t.Errorf("Table[%d] = %#x, want %#x", c.idx, got, c.want)
		}
	}
}
