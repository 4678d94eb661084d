package mnemonic

import (
	"crypto/rand"
	"testing"
)

func TestAllZeroPadFirstWordIsAble(t *testing.T) {
	pad := make([]byte, 32*1024)
	words, err := Generate(pad)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if words[0] != "able" {
		t.Fatalf("expected first word 'able' for all-zero pad, got %q", words[0])
	}
	for _, w := range words {
		if w != "able" {
			t.Fatalf("expected every word to be 'able' for an all-zero pad, got %q", w)
		}
	}
}

func TestWordCount(t *testing.T) {
	pad := make([]byte, 7)
	if _, err := rand.Read(pad); err != nil {
		t.Fatalf("rand: %v", err)
	}
	words, err := Generate(pad)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(words) != WordCount {
		t.Fatalf("expected %d words, got %d", WordCount, len(words))
	}
}

func TestDeterministic(t *testing.T) {
	pad := make([]byte, 32*1024)
	if _, err := rand.Read(pad); err != nil {
		t.Fatalf("rand: %v", err)
	}
	a, err := Generate(pad)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(pad)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("mnemonic not deterministic at word %d: %q != %q", i, a[i], b[i])
		}
	}
}

func TestShortPadWraps(t *testing.T) {
	// A 1-byte pad is far shorter than the 54 bits six words need; the bit
	// reader must wrap around rather than fail or panic.
	pad := []byte{0xA5}
	words, err := Generate(pad)
	if err != nil {
		t.Fatalf("Generate on short pad: %v", err)
	}
	if len(words) != WordCount {
		t.Fatalf("expected %d words, got %d", WordCount, len(words))
	}
}

func TestEmptyPadRejected(t *testing.T) {
	if _, err := Generate(nil); err == nil {
		t.Fatalf("expected error for empty pad")
	}
}

func TestVerifyRoundtrip(t *testing.T) {
	pad := make([]byte, 32*1024)
	if _, err := rand.Read(pad); err != nil {
		t.Fatalf("rand: %v", err)
	}
	words, err := Generate(pad)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	ok, err := Verify(pad, words)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("Verify should accept the mnemonic Generate produced")
	}
}

func TestVerifyRejectsWrongWords(t *testing.T) {
	pad := make([]byte, 32*1024)
	if _, err := rand.Read(pad); err != nil {
		t.Fatalf("rand: %v", err)
	}
	ok, err := Verify(pad, []string{"able", "able", "able", "able", "able", "able"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("Verify should reject a mismatched mnemonic (astronomically unlikely false positive aside)")
	}
}

func TestIndicesRoundtrip(t *testing.T) {
	idx, err := Indices([]string{"able", "acid", "aged", "also", "area", "army"})
	if err != nil {
		t.Fatalf("Indices: %v", err)
	}
	want := []int{0, 1, 2, 3, 4, 5}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("Indices[%d] = %d, want %d", i, idx[i], want[i])
		}
	}
}

func TestIndicesRejectsUnknownWord(t *testing.T) {
	_, err := Indices([]string{"able", "acid", "aged", "also", "area", "zzzz"})
	if err == nil {
		t.Fatalf("expected error for unknown word")
	}
}

func TestIndicesRejectsWrongCount(t *testing.T) {
	_, err := Indices([]string{"able", "acid"})
	if err == nil {
		t.Fatalf("expected error for wrong word count")
	}
}

func TestWordListHas512UniqueEntries(t *testing.T) {
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if seen[w] {
			t.Fatalf("duplicate word in list: %q", w)
		}
		seen[w] = true
	}
	if len(words) != 512 {
		t.Fatalf("expected 512 words, got %d", len(words))
	}
}
