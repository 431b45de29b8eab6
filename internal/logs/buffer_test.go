package logs

import (
	"testing"
	"time"
)

// verifyMessages checks that entries have expected messages in order.
func verifyMessages(t *testing.T, entries []Entry, expected []string) {
	t.Helper()
	if len(entries) != len(expected) {
		t.Errorf("got %d entries, want %d", len(entries), len(expected))
		return
	}
	for i, e := range entries {
		if e.Message != expected[i] {
			t.Errorf("entries[%d].Message = %q, want %q", i, e.Message, expected[i])
		}
	}
}

// writeLetters writes n entries with messages A, B, C, etc.
func writeLetters(buf *circularBuffer, n int) {
	for i := range n {
		buf.Write(Entry{
			Timestamp: time.Now(),
			Message:   string(rune('A' + i)),
		})
	}
}

func TestCircularBuffer_Write(t *testing.T) {
	t.Run("writes entries to buffer", func(t *testing.T) {
		buf := NewBuffer(10)

		buf.Write(Entry{
			Timestamp: time.Now(),
			Level:     "info",
			Message:   "test message",
		})

		if buf.Size() != 1 {
			t.Errorf("Size() = %d, want 1", buf.Size())
		}
	})

	t.Run("overwrites oldest when full", func(t *testing.T) {
		buf := NewBuffer(3)
		writeLetters(buf, 5)

		if buf.Size() != 3 {
			t.Errorf("Size() = %d, want 3", buf.Size())
		}

		// Should have C, D, E (oldest A, B overwritten)
		verifyMessages(t, buf.Recent(0), []string{"C", "D", "E"})
	})
}

func TestCircularBuffer_Recent(t *testing.T) {
	buf := NewBuffer(10)
	writeLetters(buf, 5)

	verifyMessages(t, buf.Recent(2), []string{"D", "E"})
	verifyMessages(t, buf.Recent(100), []string{"A", "B", "C", "D", "E"})
}
