package server

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/caloriediary/go-diary-client/api"
	"github.com/caloriediary/go-diary-client/diary"
	"github.com/caloriediary/go-diary-client/feed"
	"github.com/caloriediary/go-diary-client/internal/utils"
)

// DashboardData contains everything the diary view renders.
type DashboardData struct {
	AppName  string
	UserName string
	Periods  []diary.Period
	Snapshot feed.Snapshot
	GoalPct  int
	Flash    string
	Error    string
}

// DashboardHandler renders the diary: totals, goal progress, breakdown and
// meal list for the requested period. Every render is a fresh fetch.
func (s *Server) DashboardHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("dashboard.html")
	if err != nil {
		panic("Failed to parse dashboard template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		period, err := diary.ParsePeriod(r.URL.Query().Get("period"))
		if err != nil {
			period = diary.PeriodDay
		}

		snapshot := s.feed.Fetch(r.Context(), period)

		data := DashboardData{
			AppName:  s.config.GetAppName(),
			Periods:  diary.Periods,
			Snapshot: snapshot,
			Flash:    r.URL.Query().Get("message"),
			Error:    r.URL.Query().Get("error"),
		}
		if user := s.session.User(); user != nil {
			data.UserName = utils.FirstNonEmpty(user.Name, user.Email)
		}
		if report := snapshot.Report; report != nil && report.GoalCalories != nil && *report.GoalCalories > 0 {
			pct := report.TotalCalories * 100 / *report.GoalCalories
			if pct > 100 {
				pct = 100
			}
			data.GoalPct = pct
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			s.log.Err(err).Msg("Failed to render dashboard template")
		}
	}
}

// AddMealHandler logs a meal through the consumption adapter, triggers a
// manual feed refresh and lands back on the diary.
func (s *Server) AddMealHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		period := r.FormValue("period")
		input := diary.MealInput{
			Name:       r.FormValue("name"),
			Emoji:      r.FormValue("emoji"),
			ConsumedAt: r.FormValue("consumedAt"),
		}
		if input.ConsumedAt == "" {
			input.ConsumedAt = time.Now().Format(time.RFC3339)
		}
		if raw := r.FormValue("calories"); raw != "" {
			if calories, err := strconv.Atoi(raw); err == nil {
				input.Calories = utils.Ptr(calories)
			}
		}

		query := url.Values{}
		if period != "" {
			query.Set("period", period)
		}

		resp, err := s.client.CreateMealEntry(r.Context(), input)
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to log meal")
			query.Set("error", api.Message(err))
			http.Redirect(w, r, RouteDiary+"?"+query.Encode(), http.StatusSeeOther)
			return
		}

		s.feed.Refresh(r.Context())

		if resp.Message != "" {
			query.Set("message", resp.Message)
		}
		http.Redirect(w, r, RouteDiary+"?"+query.Encode(), http.StatusSeeOther)
	}
}
