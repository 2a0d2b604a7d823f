package timetable

import (
	"strings"
	"unicode/utf8"
)

const nbsp = "\u00a0"

// Teacher identifies a teacher on the portal.
type Teacher struct {
	ID         string
	Surname    string
	GivenName  string
	Patronymic string
}

// ParseTeacher splits a "Surname Given Patronymic" string.
func ParseTeacher(id, fio string) Teacher {
	parts := strings.Fields(fio)
	t := Teacher{ID: id}
	if len(parts) > 0 {
		t.Surname = parts[0]
	}
	if len(parts) > 1 {
		t.GivenName = parts[1]
	}
	if len(parts) > 2 {
		t.Patronymic = strings.Join(parts[2:], " ")
	}
	return t
}

// FullName returns "Surname Given Patronymic".
func (t Teacher) FullName() string {
	return strings.Join(nonEmpty(t.Surname, t.GivenName, t.Patronymic), " ")
}

// Initials returns the surname and initials joined by non-breaking spaces,
// e.g. "Менделеев Д. И.".
func (t Teacher) Initials() string {
	parts := []string{t.Surname}
	for _, name := range nonEmpty(t.GivenName, t.Patronymic) {
		parts = append(parts, firstRune(name)+".")
	}
	return strings.Join(parts, nbsp)
}

// Abbreviation returns "Surname G.P." the way the portal labels teachers.
func (t Teacher) Abbreviation() string {
	return Abbreviate(t.FullName())
}

// Translit returns a file-system friendly name, e.g. "mendeleev_d_i".
func (t Teacher) Translit() string {
	parts := []string{t.Surname}
	for _, name := range nonEmpty(t.GivenName, t.Patronymic) {
		parts = append(parts, firstRune(name))
	}
	return transliterate(strings.ToLower(strings.Join(parts, "_")))
}

// Abbreviate shortens a full name to "Surname I.O.".
func Abbreviate(fio string) string {
	parts := strings.Fields(fio)
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(parts[0])
	if len(parts) > 1 {
		b.WriteString(" ")
	}
	for _, name := range parts[1:] {
		b.WriteString(firstRune(name))
		b.WriteString(".")
	}
	return b.String()
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Moscow metro romanization.
var cyrillicLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

func transliterate(s string) string {
	var b strings.Builder
	for _, r := range s {
		if latin, ok := cyrillicLatin[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
