package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskmatter/internal/calendar"
	"deskmatter/internal/config"
	"deskmatter/internal/metrics"
	"deskmatter/internal/state"
	"deskmatter/internal/storage"
	"deskmatter/internal/tray"
)

// countingStore wraps a real store and counts tag and matter calls.
type countingStore struct {
	storage.Store

	mu         sync.Mutex
	tagDeletes []string
	tagTouches []string
	matterOps  int
}

func (s *countingStore) Tags() storage.TagRepository {
	return &countingTags{TagRepository: s.Store.Tags(), parent: s}
}

func (s *countingStore) Matters() storage.MatterRepository {
	s.mu.Lock()
	s.matterOps++
	s.mu.Unlock()
	return s.Store.Matters()
}

type countingTags struct {
	storage.TagRepository
	parent *countingStore
}

func (t *countingTags) Delete(ctx context.Context, name string) error {
	t.parent.mu.Lock()
	t.parent.tagDeletes = append(t.parent.tagDeletes, name)
	t.parent.mu.Unlock()
	return t.TagRepository.Delete(ctx, name)
}

func (t *countingTags) UpdateLastUsedAt(ctx context.Context, name string) error {
	t.parent.mu.Lock()
	t.parent.tagTouches = append(t.parent.tagTouches, name)
	t.parent.mu.Unlock()
	return t.TagRepository.UpdateLastUsedAt(ctx, name)
}

type fakeStatus struct{}

func (fakeStatus) Port() int     { return 18089 }
func (fakeStatus) Running() bool { return true }

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type testServer struct {
	router  http.Handler
	store   *countingStore
	flasher *tray.Flasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := storage.New(config.StorageConfig{
		Driver:          "sqlite",
		DSN:             filepath.Join(t.TempDir(), "api.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := &countingStore{Store: db}
	flasher := tray.NewFlasher(&tray.LogIcon{}, 10*time.Millisecond, nil)
	t.Cleanup(flasher.Disable)

	router := NewRouter(state.New(store), Options{
		Metrics:  metrics.New(),
		Flasher:  flasher,
		Calendar: calendar.Unsupported{},
		Status:   fakeStatus{},
	})

	return &testServer{router: router, store: store, flasher: flasher}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w.Code, env
}

func TestMatterRoutes(t *testing.T) {
	s := newTestServer(t)

	t.Run("Missing matter returns 404 with null data", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/matter/does-not-exist", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, http.StatusNotFound, env.Code)
		assert.Equal(t, "null", string(env.Data))
	})

	var id string
	t.Run("Create assigns an id", func(t *testing.T) {
		status, env := s.do(t, http.MethodPost, "/matter",
			`{"title":"Standup","start_time":"2024-05-06T09:00:00Z","end_time":"2024-05-06T09:30:00Z","tags":"work"}`)
		require.Equal(t, http.StatusOK, status)

		var matter storage.Matter
		require.NoError(t, json.Unmarshal(env.Data, &matter))
		assert.NotEmpty(t, matter.ID)
		id = matter.ID
	})

	t.Run("Get returns the created matter", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/matter/"+id, "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, 200, env.Code)
		assert.Contains(t, string(env.Data), "Standup")
	})

	t.Run("Range finds overlapping matters", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/matter/range?start=2024-05-06T09:15:00Z&end=2024-05-06T10:00:00Z", "")
		require.Equal(t, http.StatusOK, status)

		var matters []storage.Matter
		require.NoError(t, json.Unmarshal(env.Data, &matters))
		assert.Len(t, matters, 1)
	})

	t.Run("Range rejects malformed bounds", func(t *testing.T) {
		status, _ := s.do(t, http.MethodGet, "/matter/range?start=yesterday&end=today", "")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Query on whitelisted field", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/matter/query?field=tags&value=work&exact_match=true", "")
		require.Equal(t, http.StatusOK, status)

		var matters []storage.Matter
		require.NoError(t, json.Unmarshal(env.Data, &matters))
		assert.Len(t, matters, 1)
	})

	t.Run("Query on unknown field never reaches the store", func(t *testing.T) {
		s.store.mu.Lock()
		before := s.store.matterOps
		s.store.mu.Unlock()

		status, env := s.do(t, http.MethodGet, "/matter/query?field=secret&value=x", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, http.StatusBadRequest, env.Code)
		assert.Equal(t, "null", string(env.Data))

		s.store.mu.Lock()
		defer s.store.mu.Unlock()
		assert.Equal(t, before, s.store.matterOps)
	})

	t.Run("Substring query matches wildcard characters literally", func(t *testing.T) {
		for _, reserved := range []string{"foo_bar", "fooXbar", "50%off"} {
			status, _ := s.do(t, http.MethodPost, "/matter",
				`{"title":"Tagged","start_time":"2024-06-01T09:00:00Z","end_time":"2024-06-01T10:00:00Z","reserved_3":"`+reserved+`"}`)
			require.Equal(t, http.StatusOK, status)
		}

		query := func(value string) []storage.Matter {
			status, env := s.do(t, http.MethodGet, "/matter/query?field=reserved_3&value="+value, "")
			require.Equal(t, http.StatusOK, status)
			var matters []storage.Matter
			require.NoError(t, json.Unmarshal(env.Data, &matters))
			return matters
		}

		got := query("foo_bar")
		require.Len(t, got, 1)
		assert.Equal(t, "foo_bar", got[0].Reserved3)

		got = query("50%25off")
		require.Len(t, got, 1)
		assert.Equal(t, "50%off", got[0].Reserved3)

		assert.Len(t, query("FOO"), 2)
	})

	t.Run("Update and delete", func(t *testing.T) {
		status, _ := s.do(t, http.MethodPut, "/matter/"+id,
			`{"title":"Retro","start_time":"2024-05-06T09:00:00Z","end_time":"2024-05-06T09:30:00Z"}`)
		require.Equal(t, http.StatusOK, status)

		status, _ = s.do(t, http.MethodPut, "/matter/missing", `{"title":"Ghost"}`)
		assert.Equal(t, http.StatusNotFound, status)

		status, env := s.do(t, http.MethodDelete, "/matter/"+id, "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "null", string(env.Data))

		status, _ = s.do(t, http.MethodGet, "/matter/"+id, "")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Invalid body is a bad request", func(t *testing.T) {
		status, _ := s.do(t, http.MethodPost, "/matter", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestTagBatchRoutes(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/tags", `{"names":"a,b,c"}`)
	require.Equal(t, http.StatusOK, status)

	t.Run("Duplicate names are applied once", func(t *testing.T) {
		status, _ := s.do(t, http.MethodDelete, "/tags/a,%20a%20,b", "")
		require.Equal(t, http.StatusOK, status)

		s.store.mu.Lock()
		defer s.store.mu.Unlock()
		assert.Equal(t, []string{"a", "b"}, s.store.tagDeletes)
	})

	t.Run("Empty batch is rejected without store calls", func(t *testing.T) {
		status, env := s.do(t, http.MethodPut, "/tags/update/%20,%20", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "null", string(env.Data))

		s.store.mu.Lock()
		defer s.store.mu.Unlock()
		assert.Empty(t, s.store.tagTouches)
	})

	t.Run("Create rejects an overlong name", func(t *testing.T) {
		status, _ := s.do(t, http.MethodPost, "/tags", `{"names":"`+strings.Repeat("x", 51)+`"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Overlong stored tag can be touched and deleted", func(t *testing.T) {
		long := strings.Repeat("y", 60)
		require.NoError(t, s.store.Store.Tags().Create(context.Background(), long))

		status, _ := s.do(t, http.MethodPut, "/tags/update/"+long, "")
		assert.Equal(t, http.StatusOK, status)

		status, _ = s.do(t, http.MethodDelete, "/tags/"+long, "")
		assert.Equal(t, http.StatusOK, status)

		s.store.mu.Lock()
		defer s.store.mu.Unlock()
		assert.Contains(t, s.store.tagDeletes, long)
		assert.Contains(t, s.store.tagTouches, long)
	})

	t.Run("Remaining tags are listed", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/tags", "")
		require.Equal(t, http.StatusOK, status)

		var tags []storage.Tag
		require.NoError(t, json.Unmarshal(env.Data, &tags))
		require.Len(t, tags, 1)
		assert.Equal(t, "c", tags[0].Name)
	})
}

func TestKVRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/kv/theme", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, `""`, string(env.Data))

	req := httptest.NewRequest(http.MethodPut, "/kv/theme", strings.NewReader("dark"))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	_, env = s.do(t, http.MethodGet, "/kv/theme", "")
	assert.Equal(t, `"dark"`, string(env.Data))

	status, _ = s.do(t, http.MethodDelete, "/kv/theme", "")
	require.Equal(t, http.StatusOK, status)

	_, env = s.do(t, http.MethodGet, "/kv/theme", "")
	assert.Equal(t, `""`, string(env.Data))
}

func TestRepeatTaskRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/repeat-task", `{"id":"t1","title":"Stretch","repeat_time":"daily|15:00|15:10","status":1}`)
	require.Equal(t, http.StatusOK, status, string(env.Data))

	status, _ = s.do(t, http.MethodPost, "/repeat-task", `{"title":"Broken","repeat_time":"sometimes"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodGet, "/repeat-task/active", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"t1"`)

	status, _ = s.do(t, http.MethodPut, "/repeat-task/t1/status/0", "")
	require.Equal(t, http.StatusOK, status)

	_, env = s.do(t, http.MethodGet, "/repeat-task/active", "")
	assert.Equal(t, "[]", string(env.Data))

	status, _ = s.do(t, http.MethodPut, "/repeat-task/t1/status/9", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPut, "/repeat-task/missing/status/1", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTodoRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/todo", `{"title":"Buy milk"}`)
	require.Equal(t, http.StatusOK, status)

	var todo storage.Todo
	require.NoError(t, json.Unmarshal(env.Data, &todo))

	status, _ = s.do(t, http.MethodPut, "/todo/"+todo.ID, `{"title":"Buy milk","status":1}`)
	require.Equal(t, http.StatusOK, status)

	_, env = s.do(t, http.MethodGet, "/todo/"+todo.ID, "")
	assert.Contains(t, string(env.Data), `"status":1`)

	status, _ = s.do(t, http.MethodDelete, "/todo/"+todo.ID, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/todo/"+todo.ID, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNotificationRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"id":"n1","title":"Update available","type_":1}`,
		`{"id":"n2","title":"Reminder","type_":2}`,
		`{"id":"n3","title":"Reminder","type_":2}`,
	} {
		status, _ := s.do(t, http.MethodPost, "/notification", body)
		require.Equal(t, http.StatusOK, status)
	}

	unread := func() []storage.NotificationRecord {
		_, env := s.do(t, http.MethodGet, "/notification/unread", "")
		var records []storage.NotificationRecord
		require.NoError(t, json.Unmarshal(env.Data, &records))
		return records
	}
	assert.Len(t, unread(), 3)

	status, _ := s.do(t, http.MethodPut, "/notification/n1/read", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, unread(), 2)

	status, _ = s.do(t, http.MethodPut, "/notification/read/2", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, unread())

	status, _ = s.do(t, http.MethodPost, "/notification", `{"id":"n4","title":"Later"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPut, "/notification/read-all", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, unread())

	status, _ = s.do(t, http.MethodPut, "/notification/missing/read", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodDelete, "/notification/n1", "")
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/notification/n1", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTrayRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPut, "/tray/flash/true", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"running":true`)
	assert.True(t, s.flasher.Running())

	status, env = s.do(t, http.MethodPut, "/tray/flash/false", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"active_tasks":0`)

	status, _ = s.do(t, http.MethodPut, "/tray/flash/maybe", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCalendarRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/calendar/events?start=2024-05-06T00:00:00Z&end=2024-05-07T00:00:00Z", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(env.Data))

	status, env = s.do(t, http.MethodGet, "/calendar/permission", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"platform":"unsupported"`)
}

func TestBaseRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, `"pong"`, string(env.Data))

	status, env = s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)

	var report HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, 18089, report.Components.Server.Port)
	assert.NotEmpty(t, report.Components.Database.SQLiteVersion)

	status, env = s.do(t, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "null", string(env.Data))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deskmatter_http_requests_total")
}
