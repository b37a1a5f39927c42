package config

import "testing"

func TestParseReminderTimes(t *testing.T) {
	times, err := parseReminderTimes("10:00, 14:30,02:05")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(times) != 3 {
		t.Fatalf("expected 3 times, got %d", len(times))
	}
	if times[1].Hour != 14 || times[1].Minute != 30 {
		t.Fatalf("unexpected second time: %+v", times[1])
	}
}

func TestParseReminderTimes_Empty(t *testing.T) {
	times, err := parseReminderTimes("  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if times != nil {
		t.Fatalf("expected nil, got %+v", times)
	}
}

func TestParseReminderTimes_Malformed(t *testing.T) {
	for _, input := range []string{"10", "ten:00", "10:oh"} {
		if _, err := parseReminderTimes(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
