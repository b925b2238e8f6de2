package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/wbs/internal/importer"
)

// TaskPatch carries the fields a task update may change. Nil fields are left
// as they are on the server.
type TaskPatch struct {
	Progress     *int    `json:"progress,omitempty"`
	Status       *string `json:"status,omitempty"`
	AssigneeID   *string `json:"assigneeId,omitempty"`
	AssigneeName *string `json:"assigneeName,omitempty"`
}

// Client reads WBS snapshots from and writes task edits to the REST API.
type Client interface {
	FetchSnapshot(ctx context.Context, projectID string) (*importer.SnapshotFile, error)
	UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (*importer.TaskRecord, error)
}

type httpClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a Client for cfg.BaseURL.
func NewClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

func (c *httpClient) FetchSnapshot(ctx context.Context, projectID string) (*importer.SnapshotFile, error) {
	path := "/api/projects/" + url.PathEscape(projectID) + "/wbs"
	var file importer.SnapshotFile
	if err := c.call(ctx, http.MethodGet, path, nil, &file); err != nil {
		return nil, err
	}
	if file.ProjectID == "" {
		file.ProjectID = projectID
	}
	return &file, nil
}

func (c *httpClient) UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (*importer.TaskRecord, error) {
	path := "/api/wbs/tasks/" + url.PathEscape(taskID)
	var rec importer.TaskRecord
	if err := c.call(ctx, http.MethodPatch, path, patch, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// call performs one logical request, retrying transport errors and 5xx
// responses up to cfg.MaxRetries times.
func (c *httpClient) call(ctx context.Context, method, path string, body, out any) error {
	if !c.cfg.Enabled() {
		return ErrNotConfigured
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout())
	defer cancel()

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	var (
		lastErr    error
		statusCode int
		attempts   int
	)
	maxAttempts := 1 + c.cfg.MaxRetries
	for attempts < maxAttempts {
		attempts++
		var retryable bool
		statusCode, retryable, lastErr = c.doRequest(ctx, method, path, payload, out)
		if lastErr == nil {
			c.observer.OnCallComplete(CallEvent{
				Method:     method,
				Path:       path,
				StatusCode: statusCode,
				Attempts:   attempts,
				LatencyMs:  time.Since(start).Milliseconds(),
				Success:    true,
			})
			return nil
		}
		// Context cancellation and 4xx answers are final.
		if !retryable || ctx.Err() != nil {
			break
		}
		if attempts < maxAttempts && c.cfg.RetryDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.cfg.RetryDelay):
			}
		}
	}

	err := classify(ctx, lastErr, attempts, maxAttempts)
	c.observer.OnCallComplete(CallEvent{
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Attempts:   attempts,
		LatencyMs:  time.Since(start).Milliseconds(),
		ErrorCode:  errorCode(err),
	})
	return err
}

func (c *httpClient) doRequest(ctx context.Context, method, path string, payload []byte, out any) (int, bool, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, reqBody)
	if err != nil {
		return 0, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, true, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, true, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return resp.StatusCode, true, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	case resp.StatusCode >= 300:
		return resp.StatusCode, false, fmt.Errorf("%w: status %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, false, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, false, nil
}

func classify(ctx context.Context, err error, attempts, maxAttempts int) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("backend call cancelled: %w", ctx.Err())
	case ctx.Err() != nil:
		return ErrTimeout
	case errors.Is(err, ErrStatus):
		return err
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case attempts >= maxAttempts && maxAttempts > 1:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	default:
		return err
	}
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, context.Canceled):
		return "CANCELLED"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrStatus):
		return "STATUS"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
