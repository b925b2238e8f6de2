package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/wbs/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.RetryDelay = 0
	return cfg
}

type recordingObserver struct {
	mu     sync.Mutex
	events []CallEvent
}

func (o *recordingObserver) OnCallComplete(e CallEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() CallEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func snapshotJSON(projectID string) string {
	return `{"projectId":"` + projectID + `","phases":[{"id":"p1","name":"Design"}],
		"groups":[],"items":[],"tasks":[{"id":"t1","itemId":"i1","name":"Sketch","progress":10}]}`
}

func TestClient_FetchSnapshot_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/projects/proj-1/wbs", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(snapshotJSON("proj-1")))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Token = "secret"
	obs := &recordingObserver{}
	file, err := NewClient(cfg, obs).FetchSnapshot(context.Background(), "proj-1")

	require.NoError(t, err)
	assert.Equal(t, "proj-1", file.ProjectID)
	require.Len(t, file.Tasks, 1)
	assert.Equal(t, 10.0, *file.Tasks[0].Progress)

	ev := obs.last()
	assert.True(t, ev.Success)
	assert.Equal(t, 1, ev.Attempts)
	assert.Equal(t, http.StatusOK, ev.StatusCode)
}

func TestClient_FetchSnapshot_FillsMissingProjectID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"phases":[]}`))
	}))
	defer srv.Close()

	file, err := NewClient(testConfig(srv.URL), nil).FetchSnapshot(context.Background(), "proj-9")
	require.NoError(t, err)
	assert.Equal(t, "proj-9", file.ProjectID)
}

func TestClient_UpdateTask_SendsPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/wbs/tasks/t1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"progress": float64(75)}, body)

		_, _ = w.Write([]byte(`{"id":"t1","itemId":"i1","name":"Sketch","progress":75}`))
	}))
	defer srv.Close()

	progress := 75
	rec, err := NewClient(testConfig(srv.URL), nil).UpdateTask(context.Background(), "t1", TaskPatch{Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, "t1", rec.ID)
	assert.Equal(t, 75.0, *rec.Progress)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "try later", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(snapshotJSON("proj-1")))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	_, err := NewClient(testConfig(srv.URL), obs).FetchSnapshot(context.Background(), "proj-1")

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, obs.last().Attempts)
}

func TestClient_RetryExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1
	obs := &recordingObserver{}
	_, err := NewClient(cfg, obs).FetchSnapshot(context.Background(), "proj-1")

	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "RETRY_EXHAUSTED", obs.last().ErrorCode)
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "progress out of range", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	progress := 150
	_, err := NewClient(testConfig(srv.URL), nil).UpdateTask(context.Background(), "t1", TaskPatch{Progress: &progress})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "progress out of range")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.TimeoutMs = 50
	_, err := NewClient(cfg, nil).FetchSnapshot(context.Background(), "proj-1")

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_CallerCancelIsNotATimeout(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	cfg := testConfig(srv.URL)
	cfg.TimeoutMs = 5000
	obs := &recordingObserver{}
	_, err := NewClient(cfg, obs).FetchSnapshot(ctx, "proj-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "CANCELLED", obs.last().ErrorCode)
	assert.Equal(t, 1, obs.last().Attempts, "a cancelled call is not retried")
}

func TestClient_Unavailable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.MaxRetries = 0

	obs := &recordingObserver{}
	_, err := NewClient(cfg, obs).FetchSnapshot(context.Background(), "proj-1")

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "UNAVAILABLE", obs.last().ErrorCode)
}

func TestClient_NotConfigured(t *testing.T) {
	_, err := NewClient(DefaultConfig(), nil).FetchSnapshot(context.Background(), "proj-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_DecodesIntoImporterTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(snapshotJSON("proj-1")))
	}))
	defer srv.Close()

	file, err := NewClient(testConfig(srv.URL), nil).FetchSnapshot(context.Background(), "proj-1")
	require.NoError(t, err)

	errs := importer.ValidateSnapshot(file)
	require.Len(t, errs, 1, "task references an item the snapshot lacks")
	assert.Contains(t, errs[0].Error(), `item "i1" not found`)
}
