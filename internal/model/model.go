package model

import (
	"strings"
	"time"
)

// Category is the top-level classification of a goal plan. The two values
// match the labels stored by the original paper forms, so they are persisted
// and sent over the wire as-is.
type Category string

const (
	// CategoryOrientation covers orientation & mobility training (定向行動).
	CategoryOrientation Category = "定向"
	// CategoryDailyLiving covers independent daily-living skills (生活自理).
	CategoryDailyLiving Category = "生活"
)

// NormalizeCategory coerces an arbitrary string to a valid Category.
// Anything that is not exactly one of the two known labels maps to
// CategoryOrientation.
func NormalizeCategory(s string) Category {
	switch Category(strings.TrimSpace(s)) {
	case CategoryOrientation:
		return CategoryOrientation
	case CategoryDailyLiving:
		return CategoryDailyLiving
	default:
		return CategoryOrientation
	}
}

type Workspace struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

// Objectives is the per-workspace header of the goal plan form.
type Objectives struct {
	WorkspaceID  int64    `json:"workspaceId"`
	TargetDate   string   `json:"targetDate"` // YYYY-MM-DD
	TeachingGoal string   `json:"teachingGoal"`
	Category     Category `json:"category"`
}

// GoalGroup pairs one long-term goal with its ordered short-term entries.
// Index is the client-assigned group index (unique per page session, gaps
// allowed after removals); Ord is the 1-based storage order.
type GoalGroup struct {
	ID         int64    `json:"id,omitempty"`
	Index      int      `json:"index"`
	LongTerm   string   `json:"longTerm"`
	Ord        int      `json:"ord,omitempty"`
	ShortTerms []string `json:"shortTerms"`
}

type TeachingRecord struct {
	ID            int64     `json:"id"`
	TeachDate     string    `json:"teachDate"` // YYYY-MM-DD
	TeachTime     string    `json:"teachTime"` // e.g. "14:00-16:00"
	Effectiveness string    `json:"effectiveness"`
	CreatedAt     time.Time `json:"createdAt"`
}
