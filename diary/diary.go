package diary

import "fmt"

// Period represents the aggregation window for calorie statistics.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods lists every valid period in display order.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

// ParsePeriod validates a raw period value, defaulting empty input to "day".
func ParsePeriod(raw string) (Period, error) {
	if raw == "" {
		return PeriodDay, nil
	}
	p := Period(raw)
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", raw)
}

// User is an opaque passthrough of whatever the backend returns.
// Every field is optional and nothing is derived or validated client side.
type User struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// MealEntry is a single logged meal as returned by the backend.
type MealEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Calories   int    `json:"calories"`
	Emoji      string `json:"emoji,omitempty"`
	ConsumedAt string `json:"consumedAt"` // RFC 3339 timestamp, passed through as-is
}

// MealInput is the payload for logging a new meal.
type MealInput struct {
	Name       string `json:"name"`
	Calories   *int   `json:"calories,omitempty"`
	Emoji      string `json:"emoji,omitempty"`
	ConsumedAt string `json:"consumedAt,omitempty"`
	Email      string `json:"email,omitempty"`
}

// BreakdownSlot is one bucket of the per-period calorie breakdown.
type BreakdownSlot struct {
	Label    string `json:"label"`
	Calories int    `json:"calories"`
}

// StatsReport aggregates calories over a period.
type StatsReport struct {
	Period        Period          `json:"period"`
	TotalCalories int             `json:"totalCalories"`
	GoalCalories  *int            `json:"goalCalories,omitempty"`
	Meals         []MealEntry     `json:"meals"`
	Breakdown     []BreakdownSlot `json:"breakdown,omitempty"`
}

// RegisterInput carries the full registration field set. All fields are
// forwarded verbatim; validation is the backend's concern.
type RegisterInput struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Age            string `json:"age"`
	Height         string `json:"height"`
	Weight         string `json:"weight"`
	Sex            string `json:"sex"`
	WorkoutDays    string `json:"workoutDays"`
	Goal           string `json:"goal"`
	ReferralSource string `json:"referralSource"`
}
