package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jira-dashboard/internal/logging"
	"jira-dashboard/internal/models"
	"jira-dashboard/internal/utils"
)

// Client is an HTTP Reader against the sheet-reader API.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *logging.Logger
	attempts int
}

// NewClient builds a Client with a bounded per-call timeout so a stalled
// upstream cannot hang a whole check pass.
func NewClient(baseURL string, timeout time.Duration, attempts int, logger *logging.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
		attempts: attempts,
	}
}

// SprintList fetches all sprint rows.
func (c *Client) SprintList(ctx context.Context) ([]Row, error) {
	var resp struct {
		Sprints []Row `json:"sprints"`
	}
	if err := c.getJSON(ctx, "/sprint/list", nil, &resp); err != nil {
		return nil, fmt.Errorf("sprint list: %w", err)
	}
	return resp.Sprints, nil
}

// Burndown fetches the progress snapshot for one sprint.
func (c *Client) Burndown(ctx context.Context, sprintName string) (models.SprintProgress, error) {
	var snap models.SprintProgress
	path := "/sprint/burndown/" + url.PathEscape(sprintName)
	if err := c.getJSON(ctx, path, nil, &snap); err != nil {
		return models.SprintProgress{}, fmt.Errorf("burndown for %q: %w", sprintName, err)
	}
	return snap, nil
}

// TaskRows fetches one page of task rows.
func (c *Client) TaskRows(ctx context.Context, page, pageSize int, sortBy, sortOrder, sprint string) ([]Row, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	q.Set("sort_by", sortBy)
	q.Set("sort_order", sortOrder)
	if sprint != "" {
		q.Set("sprint", sprint)
	}
	var resp struct {
		Data []Row `json:"data"`
	}
	if err := c.getJSON(ctx, "/table/data", q, &resp); err != nil {
		return nil, fmt.Errorf("task rows: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return utils.Retry(c.logger, c.attempts, 500*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		switch {
		case res.StatusCode == http.StatusNotFound:
			// Not retryable; the resource does not exist upstream.
			return utils.Permanent(models.ErrSprintNotFound)
		case res.StatusCode != http.StatusOK:
			return fmt.Errorf("unexpected status %d from %s", res.StatusCode, u)
		}
		return json.NewDecoder(res.Body).Decode(out)
	})
}
