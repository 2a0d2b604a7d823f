// Package alias renames disciplines for display.
//
// A rule names the discipline as the portal spells it and, optionally, the
// teacher or classroom it applies to. Every rule is indexed both by teacher
// and by classroom; a missing qualifier indexes it as discipline-wide, so a
// teacher-only rule also renames the discipline for every other teacher
// unless a later discipline-wide rule replaces it.
package alias

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/javiermolinar/timetable/internal/timetable"
)

// Rule gives a discipline a shorter name.
type Rule struct {
	Discipline string `toml:"discipline" validate:"required"`
	Teacher    string `toml:"teacher,omitempty"`
	Classroom  string `toml:"classroom,omitempty"`
	Rename     string `toml:"rename" validate:"required"`
}

// key is a (qualifier, discipline) pair. Discipline-wide rules set wildcard.
type key struct {
	qualifier  string
	wildcard   bool
	discipline string
}

// Resolver applies rules in precedence order. It implements timetable.Namer.
type Resolver struct {
	byTeacher   map[key]string
	byClassroom map[key]string
	rules       int
}

// NewResolver indexes the rules. Invalid rules are logged and skipped.
// When two rules share a key the later one wins.
func NewResolver(rules []Rule, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := validator.New()

	r := &Resolver{
		byTeacher:   map[key]string{},
		byClassroom: map[key]string{},
	}
	for _, rule := range rules {
		if err := validate.Struct(rule); err != nil {
			logger.Warn("invalid alias rule",
				zap.String("discipline", rule.Discipline),
				zap.String("rename", rule.Rename),
				zap.Error(err))
			continue
		}

		r.byTeacher[qualified(rule.Teacher, rule.Discipline)] = rule.Rename
		r.byClassroom[qualified(rule.Classroom, rule.Discipline)] = rule.Rename
		r.rules++
	}
	return r
}

func qualified(qualifier, discipline string) key {
	return key{qualifier: qualifier, wildcard: qualifier == "", discipline: discipline}
}

// Resolve returns the display name of a lesson:
//  1. the portal comment, when present;
//  2. the first teacher-specific rule matching a candidate teacher;
//  3. the classroom-specific rule;
//  4. the discipline-wide rule;
//  5. the discipline itself.
func (r *Resolver) Resolve(q timetable.NameQuery) string {
	if q.Comment != nil {
		return *q.Comment
	}

	for _, fio := range q.Teachers {
		if rename, ok := r.byTeacher[key{qualifier: fio, discipline: q.Name}]; ok {
			return rename
		}
	}
	if q.Classroom != "" {
		if rename, ok := r.byClassroom[key{qualifier: q.Classroom, discipline: q.Name}]; ok {
			return rename
		}
	}
	if rename, ok := r.byClassroom[key{wildcard: true, discipline: q.Name}]; ok {
		return rename
	}

	return q.Name
}

// Len returns the number of accepted rules.
func (r *Resolver) Len() int {
	return r.rules
}
