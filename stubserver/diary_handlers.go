package stubserver

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/caloriediary/go-diary-client/diary"
	"github.com/caloriediary/go-diary-client/internal/utils"
	"github.com/google/uuid"
)

func (s *Server) handleConsumption(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())

	var req diary.MealInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed meal payload.")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "A meal needs a name.")
		return
	}

	// The payload may carry an explicit email; the token subject wins.
	if req.Email != "" && req.Email != email {
		writeError(w, http.StatusForbidden, "Cannot log meals for another user.")
		return
	}

	consumedAt := req.ConsumedAt
	if consumedAt == "" {
		consumedAt = s.nowTime().Format(time.RFC3339)
	}

	meal := diary.MealEntry{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Calories:   utils.Value(req.Calories),
		Emoji:      req.Emoji,
		ConsumedAt: consumedAt,
	}

	s.lock.Lock()
	s.meals[email] = append(s.meals[email], meal)
	s.lock.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"meal":    meal,
		"message": "Meal logged.",
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	if override := r.URL.Query().Get("email"); override != "" && override != email {
		writeError(w, http.StatusForbidden, "Cannot read another user's stats.")
		return
	}

	period, err := diary.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown period.")
		return
	}

	now := s.nowTime()
	since := periodStart(period, now)

	s.lock.RLock()
	goal := defaultGoalCalories
	if acct, ok := s.users[email]; ok {
		goal = acct.goalCalories
	}
	// The wire contract always carries a meals array, never null.
	meals := []diary.MealEntry{}
	for _, meal := range s.meals[email] {
		at, err := time.Parse(time.RFC3339, meal.ConsumedAt)
		if err != nil {
			continue
		}
		if !at.Before(since) && !at.After(now) {
			meals = append(meals, meal)
		}
	}
	s.lock.RUnlock()

	total := 0
	for _, meal := range meals {
		total += meal.Calories
	}

	writeJSON(w, http.StatusOK, diary.StatsReport{
		Period:        period,
		TotalCalories: total,
		GoalCalories:  utils.Ptr(goal),
		Meals:         meals,
		Breakdown:     breakdown(period, meals),
	})
}

func periodStart(period diary.Period, now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case diary.PeriodWeek:
		return midnight.AddDate(0, 0, -6)
	case diary.PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case diary.PeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	}
	return midnight
}

// breakdown buckets calories at a granularity that fits the window: meals for
// a day, days for a week or month, months for a year.
func breakdown(period diary.Period, meals []diary.MealEntry) []diary.BreakdownSlot {
	if len(meals) == 0 {
		return nil
	}

	if period == diary.PeriodDay {
		slots := make([]diary.BreakdownSlot, 0, len(meals))
		for _, meal := range meals {
			slots = append(slots, diary.BreakdownSlot{Label: meal.Name, Calories: meal.Calories})
		}
		return slots
	}

	label := func(at time.Time) string {
		if period == diary.PeriodYear {
			return at.Format("Jan")
		}
		return at.Format("Jan 2")
	}

	totals := make(map[string]int)
	order := make(map[string]time.Time)
	for _, meal := range meals {
		at, err := time.Parse(time.RFC3339, meal.ConsumedAt)
		if err != nil {
			continue
		}
		key := label(at)
		totals[key] += meal.Calories
		if existing, ok := order[key]; !ok || at.Before(existing) {
			order[key] = at
		}
	}

	slots := make([]diary.BreakdownSlot, 0, len(totals))
	for key, calories := range totals {
		slots = append(slots, diary.BreakdownSlot{Label: key, Calories: calories})
	}
	sort.Slice(slots, func(i, j int) bool {
		return order[slots[i].Label].Before(order[slots[j].Label])
	})
	return slots
}
