package instagram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "igfollowers/pkg/errors"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/request"
)

// Client fetches follower pages by replaying a captured request
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
	pageSize   int
	surface    string
}

// NewClient creates a follower endpoint client. A zero timeout means none.
func NewClient(timeout time.Duration, pageSize int, surface string, log logger.Logger) *Client {
	// Use default logger if none provided
	if log == nil {
		log = logger.GetLogger()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if surface == "" {
		surface = DefaultSearchSurface
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:   log,
		pageSize: pageSize,
		surface:  surface,
	}
}

// FetchFollowers requests the page after cursor ("" for the first page).
// It never retries; every failure is returned as a typed error.
func (c *Client) FetchFollowers(ctx context.Context, tmpl request.Template, cursor string) (*FollowersPage, error) {
	req, err := tmpl.NewRequest(ctx, FollowersQuery(cursor, c.pageSize, c.surface))
	if err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeUnknown, Message: "failed to build request", Err: err}
	}

	body, statusCode, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if statusCode < 200 || statusCode >= 300 {
		errorType := errs.StatusType(statusCode)
		c.logger.WarnWithFields("follower request rejected", map[string]interface{}{
			"status":     statusCode,
			"error_type": string(errorType),
			"target_id":  tmpl.TargetID(),
		})
		return nil, errs.New(errorType, statusCode,
			fmt.Sprintf("follower request rejected: %s", preview(body)))
	}

	page, err := parseFollowersPage(body, statusCode)
	if err != nil {
		c.logger.WithError(err).ErrorWithFields("invalid follower response", map[string]interface{}{
			"target_id":    tmpl.TargetID(),
			"body_preview": preview(body),
		})
		return nil, err
	}

	c.logger.DebugWithFields("follower page parsed", map[string]interface{}{
		"users":     len(page.Usernames),
		"has_more":  page.HasMore,
		"exhausted": page.Exhausted(),
	})
	return page, nil
}

// do sends req and reads the whole body
func (c *Client) do(req *http.Request) ([]byte, int, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"path":     req.URL.Path,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, 0, &errs.Error{Type: errs.ErrorTypeNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		return nil, 0, &errs.Error{Type: errs.ErrorTypeNetwork, Message: "failed to read response body", Code: resp.StatusCode, Err: err}
	}

	// the path only: the query carries the cursor and headers carry the session
	logger.LogRequest(c.logger, req.Method, req.URL.Path, resp.StatusCode,
		float64(time.Since(start).Microseconds())/1000)

	return body, resp.StatusCode, nil
}
