package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/icdts/itemboard"
	"github.com/icdts/itemboard/internal/logging"
	"github.com/icdts/itemboard/internal/models"
	"github.com/icdts/itemboard/internal/store"
	"github.com/icdts/itemboard/internal/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddedViews(t *testing.T) *Views {
	t.Helper()
	sub, err := fs.Sub(itemboard.EmbeddedViews, "views")
	require.NoError(t, err)
	views, err := NewViews(sub)
	require.NoError(t, err)
	return views
}

func newApp(t *testing.T, s store.Store, forecast http.Handler) (*App, http.Handler) {
	t.Helper()
	if forecast == nil {
		forecast = http.NotFoundHandler()
	}
	fsrv := httptest.NewServer(forecast)
	t.Cleanup(fsrv.Close)

	app := &App{
		Store:    s,
		Weather:  weather.NewClient(fsrv.URL, time.Second),
		Views:    embeddedViews(t),
		Log:      logging.Nop(),
		Static:   itemboard.EmbeddedStatic,
		PageSize: 5,
	}
	return app, app.Handler()
}

func get(t *testing.T, h http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	rec := get(t, h, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = get(t, h, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

type downStore struct{ *store.Memory }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestReadyzStoreDown(t *testing.T) {
	_, h := newApp(t, downStore{store.NewSeededMemory()}, nil)

	rec := get(t, h, "/readyz", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestID(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	rec := get(t, h, "/healthz", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	rec = get(t, h, "/healthz", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

type brokenListStore struct{ *store.Memory }

func (brokenListStore) List(context.Context) ([]models.Item, error) {
	return nil, errors.New("disk I/O error")
}

func TestHandlerLogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	app, _ := newApp(t, brokenListStore{store.NewSeededMemory()}, nil)
	app.Log = logging.New(logging.Config{Format: logging.FormatJSON, Output: &buf})
	h := app.Handler()

	rec := get(t, h, "/", map[string]string{RequestIDHeader: "abc-123"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var found bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == "failed to list items" {
			found = true
			assert.Equal(t, "abc-123", entry["request_id"])
		}
	}
	assert.True(t, found)
}

func TestIndexFirstPage(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	rec := get(t, h, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "Item Five")
	assert.NotContains(t, body, "Item Six")
	assert.Contains(t, body, "Page 1 of 2")
	assert.Contains(t, body, `class="btn-page" disabled>Previous`)
	assert.NotContains(t, body, `class="btn-page" disabled>Next`)
}

func TestIndexLastPage(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	body := get(t, h, "/?page=2", nil).Body.String()

	assert.Contains(t, body, "Item Six")
	assert.Contains(t, body, "Item Eight")
	assert.NotContains(t, body, "Item Five")
	assert.Contains(t, body, "Page 2 of 2")
	assert.Contains(t, body, `class="btn-page" disabled>Next`)
}

func TestIndexSearch(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	body := get(t, h, "/?q=SEVEN&page=2", nil).Body.String()

	assert.Contains(t, body, "Item Seven")
	assert.NotContains(t, body, "Item One")
	assert.Contains(t, body, "Page 1 of 1")
}

func TestIndexFragment(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	body := get(t, h, "/?q=two", map[string]string{"HX-Request": "true"}).Body.String()
	assert.NotContains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `id="item-list"`)
	assert.Contains(t, body, "Item Two")

	boosted := get(t, h, "/", map[string]string{"HX-Request": "true", "HX-Boosted": "true"}).Body.String()
	assert.Contains(t, boosted, "<!DOCTYPE html>")
}

func TestIndexFragmentAddFormFollowsSearch(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	body := get(t, h, "/?q=two&page=2", map[string]string{"HX-Request": "true"}).Body.String()

	start := strings.Index(body, `action="/items"`)
	require.NotEqual(t, -1, start, "add form is part of the swapped list")
	form := body[start:]
	form = form[:strings.Index(form, "</form>")]
	assert.Contains(t, form, `name="q" value="two"`)
	assert.Contains(t, form, `name="page" value="1"`)
}

func TestIndexEditMode(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	body := get(t, h, "/?edit=3", nil).Body.String()

	assert.Contains(t, body, `action="/items/3"`)
	assert.Contains(t, body, `value="Item Three"`)
	assert.Contains(t, body, "Save")
}

func TestCreateItemForm(t *testing.T) {
	s := store.NewSeededMemory()
	_, h := newApp(t, s, nil)

	rec := postForm(t, h, "/items", url.Values{"name": {"Item Nine"}, "q": {"item"}, "page": {"2"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?page=2&q=item", rec.Header().Get("Location"))

	items, _ := s.List(context.Background())
	require.Len(t, items, 9)
	assert.Equal(t, "Item Nine", items[8].Name)
}

func TestCreateItemFormEmptyName(t *testing.T) {
	s := store.NewSeededMemory()
	_, h := newApp(t, s, nil)

	rec := postForm(t, h, "/items", url.Values{"name": {""}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	items, _ := s.List(context.Background())
	assert.Len(t, items, 8)
}

func TestRenameAndDeleteForms(t *testing.T) {
	s := store.NewSeededMemory()
	_, h := newApp(t, s, nil)
	ctx := context.Background()

	rec := postForm(t, h, "/items/2", url.Values{"name": {"Second"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	items, _ := s.List(ctx)
	assert.Equal(t, "Second", items[1].Name)

	rec = postForm(t, h, "/items/2/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	items, _ = s.List(ctx)
	assert.Len(t, items, 7)

	// unknown ids are ignored
	rec = postForm(t, h, "/items/99/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = postForm(t, h, "/items/abc", url.Values{"name": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIMounted(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	rec := get(t, h, "/api/items", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestStatic(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	rec := get(t, h, "/static/style.css", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "body")
}

func TestHTMXAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "htmx.min.js")
	require.NoError(t, os.WriteFile(path, []byte("/* htmx */"), 0o644))

	app, _ := newApp(t, store.NewSeededMemory(), nil)
	app.HTMXSrc = path
	h := app.Handler()

	rec := get(t, h, "/assets/htmx.js", nil)
	assert.Equal(t, "/* htmx */", rec.Body.String())
	assert.Contains(t, get(t, h, "/", nil).Body.String(), `src="/assets/htmx.js"`)
}

const forecast = `{"current_weather":{"temperature":18.5,"windspeed":7.3,"time":"2026-10-16T09:00"}}`

func TestWeatherPage(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(forecast))
	}))

	t.Run("form only", func(t *testing.T) {
		body := get(t, h, "/weather", nil).Body.String()
		assert.Contains(t, body, `value="-26.2041"`)
		assert.NotContains(t, body, "Temperature")
	})

	t.Run("lookup", func(t *testing.T) {
		body := get(t, h, "/weather?latitude=1&longitude=2", nil).Body.String()
		assert.Contains(t, body, "Temperature: 18.5°C")
		assert.Contains(t, body, "Wind Speed: 7.3 km/h")
		assert.Contains(t, body, "Time: 2026-10-16T09:00")
	})

	t.Run("bad input", func(t *testing.T) {
		body := get(t, h, "/weather?latitude=x&longitude=2", nil).Body.String()
		assert.Contains(t, body, weather.Message)
	})
}

func TestWeatherPageUpstreamDown(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), nil)

	body := get(t, h, "/weather?latitude=1&longitude=2", nil).Body.String()

	assert.Contains(t, body, weather.Message)
}

func TestWeatherAPI(t *testing.T) {
	_, h := newApp(t, store.NewSeededMemory(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(forecast))
	}))

	rec := get(t, h, "/api/weather?latitude=1&longitude=2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"temperature":18.5,"windspeed":7.3,"time":"2026-10-16T09:00"}`, rec.Body.String())

	rec = get(t, h, "/api/weather", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong while fetching the weather."}`, rec.Body.String())
}
