package clock_test

import (
	"testing"
	"time"

	"github.com/nikbrunner/newtab/internal/clock"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.Local)
}

func TestTime(t *testing.T) {
	if got := clock.Time(at(7, 5)); got != "07:05" {
		t.Errorf("expected 07:05, got %s", got)
	}
}

func TestDate(t *testing.T) {
	if got := clock.Date(at(7, 5)); got != "2026年3月14日星期六" {
		t.Errorf("unexpected date %q", got)
	}
}

func TestGreeting(t *testing.T) {
	testCases := []struct {
		hour int
		want string
	}{
		{hour: 4, want: "夜深了，注意休息 ✨"},
		{hour: 5, want: "早上好 ☀️"},
		{hour: 11, want: "早上好 ☀️"},
		{hour: 12, want: "中午好 🌤️"},
		{hour: 14, want: "下午好 🌅"},
		{hour: 18, want: "晚上好 🌙"},
		{hour: 21, want: "晚上好 🌙"},
		{hour: 22, want: "夜深了，注意休息 ✨"},
		{hour: 0, want: "夜深了，注意休息 ✨"},
	}

	for _, tc := range testCases {
		if got := clock.Greeting(at(tc.hour, 30)); got != tc.want {
			t.Errorf("hour %d: expected %q, got %q", tc.hour, tc.want, got)
		}
	}
}

func TestAt(t *testing.T) {
	f := clock.At(at(13, 0))
	if f.Time != "13:00" || f.Greeting != "中午好 🌤️" {
		t.Errorf("unexpected face %+v", f)
	}
}
