package api

import (
	"context"
	"net/http"

	"github.com/caloriediary/go-diary-client/diary"
)

// MealResponse is the backend's acknowledgement of a logged meal.
type MealResponse struct {
	Meal    diary.MealEntry `json:"meal"`
	Message string          `json:"message"`
}

// CreateMealEntry logs a meal. The optional email rides along inside the
// payload, matching the consumption endpoint's contract.
func (c *Client) CreateMealEntry(ctx context.Context, input diary.MealInput) (*MealResponse, error) {
	var out MealResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/consumption", nil, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
