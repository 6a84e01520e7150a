package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Fatalf("truncate short = %q, want unchanged", got)
	}
	if got := truncate("hello world", 8); got != "hello..." {
		t.Fatalf("truncate = %q, want hello...", got)
	}
	if got := truncate("hello", 2); got != "he" {
		t.Fatalf("truncate tiny = %q, want he", got)
	}
	if got := truncate("hello", 0); got != "" {
		t.Fatalf("truncate zero = %q, want empty", got)
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("short.pdf", 20); got != "short.pdf" {
		t.Fatalf("truncateMiddle short = %q, want unchanged", got)
	}
	got := truncateMiddle("/home/user/documents/reports/quarterly.pdf", 24)
	if len([]rune(got)) > 24 {
		t.Fatalf("truncateMiddle = %q (%d runes), want <= 24", got, len([]rune(got)))
	}
	if got[len(got)-4:] != ".pdf" {
		t.Fatalf("truncateMiddle = %q, want file extension preserved", got)
	}
}

func TestFormatBytes(t *testing.T) {
	if got := formatBytes(999); got != "999 B" {
		t.Fatalf("formatBytes = %q, want 999 B", got)
	}
	if got := formatBytes(1024); got != "1.00 KiB" {
		t.Fatalf("formatBytes = %q, want 1.00 KiB", got)
	}
	if got := formatBytes(50 * 1024 * 1024); got != "50.00 MiB" {
		t.Fatalf("formatBytes = %q, want 50.00 MiB", got)
	}
}

func TestTitleCase(t *testing.T) {
	if got := titleCase("ONLINE"); got != "Online" {
		t.Fatalf("titleCase = %q, want Online", got)
	}
	if got := titleCase("simplex"); got != "Simplex" {
		t.Fatalf("titleCase = %q, want Simplex", got)
	}
	if got := titleCase(""); got != "" {
		t.Fatalf("titleCase empty = %q, want empty", got)
	}
}

func TestHumanizeSince(t *testing.T) {
	if got := humanizeSince(time.Time{}); got != "" {
		t.Fatalf("humanizeSince zero = %q, want empty", got)
	}
	if got := humanizeSince(time.Now().Add(-10 * time.Second)); got != "now" {
		t.Fatalf("humanizeSince recent = %q, want now", got)
	}
	if got := humanizeSince(time.Now().Add(-5 * time.Minute)); got != "5m ago" {
		t.Fatalf("humanizeSince = %q, want 5m ago", got)
	}
	if got := humanizeSince(time.Now().Add(-3 * time.Hour)); got != "3h ago" {
		t.Fatalf("humanizeSince = %q, want 3h ago", got)
	}
}

func TestRenderProgressBar(t *testing.T) {
	bar := renderProgressBar(50, 10)
	if n := len([]rune(bar)); n != 10 {
		t.Fatalf("progress bar width = %d, want 10", n)
	}
	if bar = renderProgressBar(-5, 10); len([]rune(bar)) != 10 {
		t.Fatalf("progress bar clamps negative input")
	}
	if bar = renderProgressBar(250, 10); len([]rune(bar)) != 10 {
		t.Fatalf("progress bar clamps overflow input")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("shortID short = %q, want abc", got)
	}
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("shortID = %q, want 01234567", got)
	}
}
