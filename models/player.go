package models

import (
	"fmt"
	"strings"
	"time"
)

// Gender is the composition category used when forming mixed teams.
type Gender string

const (
	GenderFemale Gender = "F"
	GenderMale   Gender = "M"
)

// ParseGender accepts "F"/"M" in any case, with surrounding spaces.
func ParseGender(s string) (Gender, error) {
	g := Gender(strings.ToUpper(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown gender %q", s)
	}
	return g, nil
}

func (g Gender) Valid() bool {
	switch g {
	case GenderFemale, GenderMale:
		return true
	}
	return false
}

// SkillClass is an ordered class: low < medium < high.
type SkillClass string

const (
	ClassLow    SkillClass = "low"
	ClassMedium SkillClass = "medium"
	ClassHigh   SkillClass = "high"
)

func ParseSkillClass(s string) (SkillClass, error) {
	c := SkillClass(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return ClassMedium, nil
	}
	if !c.Valid() {
		return "", fmt.Errorf("unknown skill class %q", s)
	}
	return c, nil
}

func (c SkillClass) Valid() bool {
	return c.Level() > 0
}

// Level maps the class onto 1..3; zero means the class is unknown.
func (c SkillClass) Level() int {
	switch c {
	case ClassLow:
		return 1
	case ClassMedium:
		return 2
	case ClassHigh:
		return 3
	}
	return 0
}

// Player is a roster entry. IDs are assigned by the store in creation order,
// so ID doubles as the creation order for tie-breaking.
type Player struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Gender    Gender     `json:"gender" db:"gender"`
	Class     SkillClass `json:"class" db:"skill_class"`
	Active    bool       `json:"active" db:"active"`
	Deleted   bool       `json:"-" db:"deleted"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
