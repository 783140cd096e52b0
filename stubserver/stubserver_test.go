package stubserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caloriediary/go-diary-client/api"
	"github.com/caloriediary/go-diary-client/diary"
	"github.com/caloriediary/go-diary-client/internal/utils"
	"github.com/caloriediary/go-diary-client/stubserver"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "john.doe@example.com"
	testPassword = "password123"
	testName     = "John Doe"
)

var testNow = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

func setupTestClient(t *testing.T, options ...stubserver.Option) (*api.Client, *stubserver.Server) {
	t.Helper()

	options = append(options, stubserver.WithNowTime(func() time.Time { return testNow }))
	stub := stubserver.New(options...)

	backend := httptest.NewServer(stub)
	t.Cleanup(backend.Close)

	client, err := api.New(backend.URL, time.Second)
	require.NoError(t, err)

	return client, stub
}

func loginTestUser(t *testing.T, client *api.Client, stub *stubserver.Server) {
	t.Helper()

	require.NoError(t, stub.SeedUser(diary.User{Name: testName, Email: testEmail}, testPassword, 2000))

	resp, err := client.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	client.SetToken(resp.Token)
}

func TestRegisterDefaultsToCreatedPending(t *testing.T) {
	client, _ := setupTestClient(t)

	resp, err := client.Register(context.Background(), diary.RegisterInput{
		FullName: testName,
		Email:    testEmail,
		Password: testPassword,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.Status)
	require.Empty(t, resp.Token)
	require.NotEmpty(t, resp.Message)
}

func TestRegisterWithAutoLoginIssuesToken(t *testing.T) {
	client, _ := setupTestClient(t, stubserver.WithAutoLogin(true))

	resp, err := client.Register(context.Background(), diary.RegisterInput{
		FullName: testName,
		Email:    testEmail,
		Password: testPassword,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, testName, resp.User.Name)
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	client, stub := setupTestClient(t)
	require.NoError(t, stub.SeedUser(diary.User{Email: testEmail}, testPassword, 0))

	_, err := client.Register(context.Background(), diary.RegisterInput{Email: testEmail, Password: testPassword})
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	client, stub := setupTestClient(t)
	require.NoError(t, stub.SeedUser(diary.User{Email: testEmail}, testPassword, 0))

	_, err := client.Login(context.Background(), testEmail, "nope")
	require.Error(t, err)
	require.Equal(t, "Invalid email or password.", api.Message(err))
}

func TestStatsRequireToken(t *testing.T) {
	client, _ := setupTestClient(t)

	_, err := client.FetchStats(context.Background(), diary.PeriodDay, "")
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestMealLoggingAndPeriodAggregation(t *testing.T) {
	client, stub := setupTestClient(t)
	loginTestUser(t, client, stub)

	logMeal := func(name string, calories int, at time.Time) {
		t.Helper()
		_, err := client.CreateMealEntry(context.Background(), diary.MealInput{
			Name:       name,
			Calories:   utils.Ptr(calories),
			ConsumedAt: at.Format(time.RFC3339),
		})
		require.NoError(t, err)
	}

	logMeal("Breakfast", 400, testNow.Add(-2*time.Hour))
	logMeal("Lunch", 600, testNow.Add(-1*time.Hour))
	logMeal("Dinner yesterday", 800, testNow.AddDate(0, 0, -1))

	day, err := client.FetchStats(context.Background(), diary.PeriodDay, "")
	require.NoError(t, err)
	require.Equal(t, 1000, day.TotalCalories)
	require.Len(t, day.Meals, 2)
	require.Equal(t, 2000, utils.Value(day.GoalCalories))

	week, err := client.FetchStats(context.Background(), diary.PeriodWeek, "")
	require.NoError(t, err)
	require.Equal(t, 1800, week.TotalCalories)
	require.Len(t, week.Meals, 3)
}

func TestStatsWithoutMealsStillCarriesArray(t *testing.T) {
	client, stub := setupTestClient(t)
	loginTestUser(t, client, stub)

	day, err := client.FetchStats(context.Background(), diary.PeriodDay, "")
	require.NoError(t, err)
	require.Zero(t, day.TotalCalories)
	// A nil slice here means the response carried "meals":null.
	require.NotNil(t, day.Meals)
	require.Empty(t, day.Meals)
}

func TestDayBreakdownListsMeals(t *testing.T) {
	client, stub := setupTestClient(t)
	loginTestUser(t, client, stub)

	_, err := client.CreateMealEntry(context.Background(), diary.MealInput{
		Name:     "Salad",
		Calories: utils.Ptr(250),
	})
	require.NoError(t, err)

	day, err := client.FetchStats(context.Background(), diary.PeriodDay, "")
	require.NoError(t, err)
	require.Len(t, day.Breakdown, 1)
	require.Equal(t, "Salad", day.Breakdown[0].Label)
	require.Equal(t, 250, day.Breakdown[0].Calories)
}

func TestWeekBreakdownBucketsByDay(t *testing.T) {
	client, stub := setupTestClient(t)
	loginTestUser(t, client, stub)

	logAt := func(calories int, at time.Time) {
		t.Helper()
		_, err := client.CreateMealEntry(context.Background(), diary.MealInput{
			Name:       "Meal",
			Calories:   utils.Ptr(calories),
			ConsumedAt: at.Format(time.RFC3339),
		})
		require.NoError(t, err)
	}

	logAt(300, testNow.AddDate(0, 0, -1))
	logAt(200, testNow.AddDate(0, 0, -1))
	logAt(500, testNow)

	week, err := client.FetchStats(context.Background(), diary.PeriodWeek, "")
	require.NoError(t, err)
	require.Len(t, week.Breakdown, 2)
	require.Equal(t, 500, week.Breakdown[0].Calories) // yesterday first
	require.Equal(t, 500, week.Breakdown[1].Calories)
}

func TestCannotTouchAnotherUsersData(t *testing.T) {
	client, stub := setupTestClient(t)
	loginTestUser(t, client, stub)

	_, err := client.CreateMealEntry(context.Background(), diary.MealInput{
		Name:  "Sneaky",
		Email: "other@example.com",
	})
	require.Error(t, err)

	_, err = client.FetchStats(context.Background(), diary.PeriodDay, "other@example.com")
	require.Error(t, err)
}
