// Package render writes collapsed timetables as HTML pages and terminal tables.
package render

import (
	"fmt"
	"strings"
	"time"
)

// Locale holds the words a rendered week needs. It is passed explicitly;
// nothing here depends on the process locale.
type Locale struct {
	Code         string
	Weekdays     [7]string  // Monday first
	Months       [12]string // genitive, January first
	GroupTitle   string     // format with the group
	TeacherTitle string     // format with the teacher's name
	WeekTitle    string     // format with the first and last day
	Period       string
	Gap          string
}

// Russian is the default locale.
var Russian = Locale{
	Code:         "ru",
	Weekdays:     [7]string{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"},
	Months:       [12]string{"января", "февраля", "марта", "апреля", "мая", "июня", "июля", "августа", "сентября", "октября", "ноября", "декабря"},
	GroupTitle:   "Расписание группы %s",
	TeacherTitle: "Расписание преподавателя %s",
	WeekTitle:    "%s – %s",
	Period:       "Пара",
	Gap:          "нет",
}

// English locale.
var English = Locale{
	Code:         "en",
	Weekdays:     [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
	Months:       [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	GroupTitle:   "Timetable of group %s",
	TeacherTitle: "Timetable of %s",
	WeekTitle:    "%s – %s",
	Period:       "Period",
	Gap:          "none",
}

// LocaleFor returns the locale with the given code, defaulting to Russian.
func LocaleFor(code string) Locale {
	if strings.EqualFold(code, English.Code) {
		return English
	}
	return Russian
}

// Date formats a day as "10 марта" or "10 March".
func (l Locale) Date(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), l.Months[t.Month()-1])
}

// DayHeader formats a column header such as "Понедельник, 10 марта".
func (l Locale) DayHeader(t time.Time) string {
	return l.Weekdays[weekdayIndex(t)] + ", " + l.Date(t)
}

// weekdayIndex maps time.Weekday onto a Monday-first index.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
