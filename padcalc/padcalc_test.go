package padcalc

import "testing"

func TestAuthOverheadIs64Bytes(t *testing.T) {
	if AuthOverhead != 64 {
		t.Fatalf("AuthOverhead = %d, want 64", AuthOverhead)
	}
}

func TestCalculateStatsBasic(t *testing.T) {
	stats := CalculatePadStats(64 * 1024)
	if stats.PadSize != 64*1024 {
		t.Errorf("PadSize = %d", stats.PadSize)
	}
	if stats.UsableBytes != 64*1024-ReservedForTokens {
		t.Errorf("UsableBytes = %d", stats.UsableBytes)
	}
	if stats.AuthOverheadPerMessage != 64 {
		t.Errorf("AuthOverheadPerMessage = %d", stats.AuthOverheadPerMessage)
	}
}

func TestMessagesAtAvgCalculation(t *testing.T) {
	stats := CalculatePadStats(64 * 1024)
	if got := stats.MessagesAtAvg(100); got != 398 {
		t.Fatalf("MessagesAtAvg(100) = %d, want 398", got)
	}
}

func TestMessagesAtAvgEmpty(t *testing.T) {
	stats := CalculatePadStats(64 * 1024)
	want := (64*1024 - ReservedForTokens) / 64
	if got := stats.MessagesAtAvg(0); got != want {
		t.Fatalf("MessagesAtAvg(0) = %d, want %d", got, want)
	}
}

func TestQRCodesCalculation(t *testing.T) {
	stats := CalculatePadStats(64 * 1024)
	if stats.QRCodesNeeded != 44 {
		t.Fatalf("QRCodesNeeded = %d, want 44", stats.QRCodesNeeded)
	}
}

func TestQRCodesLargePad(t *testing.T) {
	stats := CalculatePadStats(1024 * 1024)
	if stats.QRCodesNeeded != 700 {
		t.Fatalf("QRCodesNeeded = %d, want 700", stats.QRCodesNeeded)
	}
}

func TestTransferTimeEstimate(t *testing.T) {
	stats := CalculatePadStats(64 * 1024)
	if diff := stats.EstimatedTransferSeconds - 4.4; diff > 0.1 || diff < -0.1 {
		t.Fatalf("EstimatedTransferSeconds = %v, want ~4.4", stats.EstimatedTransferSeconds)
	}
}

func TestBytesForMessages(t *testing.T) {
	stats := CalculatePadStats(64 * 1024)
	if got := stats.BytesForMessages(10, 100); got != 1640 {
		t.Fatalf("BytesForMessages = %d, want 1640", got)
	}
}

func TestRemainingAfter(t *testing.T) {
	stats := CalculatePadStats(64 * 1024)
	remainingBytes, remainingMsgs := stats.RemainingAfter(100, 100)
	if remainingBytes != 65376-16400 {
		t.Errorf("remainingBytes = %d, want %d", remainingBytes, 65376-16400)
	}
	if remainingMsgs != 298 {
		t.Errorf("remainingMsgs = %d, want 298", remainingMsgs)
	}
}

func TestCalculatorCustomSettings(t *testing.T) {
	calc := NewPadCalculator(256 * 1024).WithQRBlockSize(2000).WithQRScanRate(15.0)
	stats := calc.Calculate()

	if stats.PadSize != 256*1024 {
		t.Errorf("PadSize = %d", stats.PadSize)
	}
	if stats.BytesPerQR != 2000 {
		t.Errorf("BytesPerQR = %d", stats.BytesPerQR)
	}
	if stats.QRCodesNeeded != 132 {
		t.Fatalf("QRCodesNeeded = %d, want 132", stats.QRCodesNeeded)
	}
	if diff := stats.EstimatedTransferSeconds - 8.8; diff > 0.1 || diff < -0.1 {
		t.Fatalf("EstimatedTransferSeconds = %v, want ~8.8", stats.EstimatedTransferSeconds)
	}
}

func TestMessageCapacityTable(t *testing.T) {
	calc := NewPadCalculator(256 * 1024)
	table := calc.MessageCapacityTable()

	if len(table) != 5 {
		t.Fatalf("len(table) = %d, want 5", len(table))
	}
	for _, row := range table {
		if row.Count <= 0 {
			t.Errorf("size %d: count = %d, want positive", row.AvgSize, row.Count)
		}
	}
	if table[0].Count <= table[4].Count {
		t.Fatalf("expected smaller average messages to yield a higher count")
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int]string{
		500:               "500 bytes",
		1024:              "1.00 KB",
		64 * 1024:         "64.00 KB",
		1024 * 1024:       "1.00 MB",
		1024 * 1024 * 1024: "1.00 GB",
	}
	for in, want := range cases {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{5.5, "5.5 seconds"},
		{90.0, "1.5 minutes"},
		{3600.0, "1.0 hours"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.in); got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestVariousPadSizes(t *testing.T) {
	sizes := []int{32 * 1024, 64 * 1024, 256 * 1024, 512 * 1024, 1024 * 1024, 10 * 1024 * 1024, 100 * 1024 * 1024}
	for _, size := range sizes {
		stats := CalculatePadStats(size)
		if stats.PadSize != size {
			t.Errorf("PadSize = %d, want %d", stats.PadSize, size)
		}
		if stats.UsableBytes >= size {
			t.Errorf("UsableBytes = %d, want < %d", stats.UsableBytes, size)
		}
		if stats.MessagesAtAvg(100) <= 0 {
			t.Errorf("MessagesAtAvg(100) <= 0 for size %d", size)
		}
		if stats.QRCodesNeeded <= 0 {
			t.Errorf("QRCodesNeeded <= 0 for size %d", size)
		}
	}
}

func TestMessagesAtAvgChars(t *testing.T) {
	stats := CalculatePadStats(64 * 1024)
	if got := stats.MessagesAtAvgChars(100); got != 305 {
		t.Fatalf("MessagesAtAvgChars(100) = %d, want 305", got)
	}
}
