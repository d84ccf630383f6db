package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"daybook/internal/goals"
)

type statusRequest struct {
	Status goals.Status `json:"status"`
}

// ListGoals returns the goals scheduled on day. Transient failures are retried.
func (c *Client) ListGoals(ctx context.Context, day time.Time) ([]goals.Goal, error) {
	query := url.Values{"date": []string{goals.FormatDate(day)}}
	var list []goals.Goal
	err := c.withRetry(ctx, func(ctx context.Context) error {
		list = nil
		return c.do(ctx, "goals.list", http.MethodGet, "/daily-goals", query, nil, &list)
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []goals.Goal{}
	}
	return list, nil
}

// CreateGoal adds a goal. Creation is not idempotent and is sent once.
func (c *Client) CreateGoal(ctx context.Context, draft goals.Draft) (goals.Goal, error) {
	var created goals.Goal
	if err := c.do(ctx, "goals.create", http.MethodPost, "/daily-goals", nil, draft, &created); err != nil {
		return goals.Goal{}, err
	}
	return created, nil
}

// UpdateGoalStatus moves a goal to status.
func (c *Client) UpdateGoalStatus(ctx context.Context, id string, status goals.Status) (goals.Goal, error) {
	if err := status.Validate(); err != nil {
		return goals.Goal{}, err
	}
	var updated goals.Goal
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.do(ctx, "goals.update", http.MethodPut, "/daily-goals/"+url.PathEscape(id), nil,
			statusRequest{Status: status}, &updated)
	})
	if err != nil {
		return goals.Goal{}, err
	}
	if updated.ID == "" {
		updated.ID = id
		updated.Status = status
	}
	return updated, nil
}

// DeleteGoal removes a goal.
func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.do(ctx, "goals.delete", http.MethodDelete, "/daily-goals/"+url.PathEscape(id), nil, nil, nil)
	})
}
