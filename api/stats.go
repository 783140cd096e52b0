package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/caloriediary/go-diary-client/diary"
)

// FetchStats retrieves the aggregated calorie report for a period. The email
// parameter is an optional backend-side filter and is omitted when empty.
func (c *Client) FetchStats(ctx context.Context, period diary.Period, email string) (*diary.StatsReport, error) {
	query := url.Values{}
	query.Set("period", string(period))
	if email != "" {
		query.Set("email", email)
	}

	var out diary.StatsReport
	if _, err := c.do(ctx, http.MethodGet, "/api/stats", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
