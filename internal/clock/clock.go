// Package clock renders the time, date and greeting shown above the search box.
package clock

import (
	"fmt"
	"time"
)

var weekdays = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// Time formats t as HH:MM.
func Time(t time.Time) string {
	return t.Format("15:04")
}

// Date formats t as a long zh-CN date, e.g. 2026年3月14日星期六.
func Date(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日%s", t.Year(), int(t.Month()), t.Day(), weekdays[t.Weekday()])
}

// Greeting picks the greeting for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "早上好 ☀️"
	case h >= 12 && h < 14:
		return "中午好 🌤️"
	case h >= 14 && h < 18:
		return "下午好 🌅"
	case h >= 18 && h < 22:
		return "晚上好 🌙"
	default:
		return "夜深了，注意休息 ✨"
	}
}

// Face is everything the clock widget shows at one instant.
type Face struct {
	Time     string `json:"time"`
	Date     string `json:"date"`
	Greeting string `json:"greeting"`
}

// At renders the widget for t.
func At(t time.Time) Face {
	return Face{Time: Time(t), Date: Date(t), Greeting: Greeting(t)}
}
