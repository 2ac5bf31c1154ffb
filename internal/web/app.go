// Package web serves the item browser and weather pages.
package web

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/icdts/itemboard/internal/api"
	"github.com/icdts/itemboard/internal/browser"
	"github.com/icdts/itemboard/internal/listing"
	"github.com/icdts/itemboard/internal/store"
	"github.com/icdts/itemboard/internal/weather"
)

// Default coordinates for the weather form (Johannesburg).
const (
	DefaultLatitude  = "-26.2041"
	DefaultLongitude = "28.0473"
)

type App struct {
	Store   store.Store
	Weather *weather.Client
	Views   *Views
	Log     *slog.Logger

	// Static holds the files served under /static/.
	Static   fs.FS
	API      api.Options
	PageSize int
	// HTMXSrc is a path on disk served as /assets/htmx.js when set.
	HTMXSrc string
}

type layoutData struct {
	Title string
	HTMX  bool
}

type indexData struct {
	layoutData
	Page      listing.Page
	Search    string
	Editing   bool
	EditingID int64
	EditValue string
}

type weatherData struct {
	layoutData
	Latitude  string
	Longitude string
	Weather   *weather.Current
	Error     string
}

// Handler wires every route behind the request logger.
func (app *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthz)
	mux.HandleFunc("GET /readyz", app.readyz)
	if app.HTMXSrc != "" {
		mux.HandleFunc("GET /assets/htmx.js", func(w http.ResponseWriter, r *http.Request) { http.ServeFile(w, r, app.HTMXSrc) })
	}
	if app.Static != nil {
		mux.Handle("GET /static/", http.FileServer(http.FS(app.Static)))
	}

	api.NewHandler(app.Store, app.Log, app.API).Register(mux)
	mux.HandleFunc("GET /api/weather", app.apiWeather)

	mux.HandleFunc("GET /{$}", app.pageIndex)
	mux.HandleFunc("POST /items", app.createItem)
	mux.HandleFunc("POST /items/{id}", app.renameItem)
	mux.HandleFunc("POST /items/{id}/delete", app.deleteItem)
	mux.HandleFunc("GET /weather", app.pageWeather)

	return withRequestLog(app.Log, mux)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (app *App) readyz(w http.ResponseWriter, r *http.Request) {
	if err := app.Store.Ping(r.Context()); err != nil {
		app.logger(r).Warn("store not ready", "error", err)
		http.Error(w, "Store Not Ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// logger tags handler logs with the id the request log line carries.
func (app *App) logger(r *http.Request) *slog.Logger {
	return app.Log.With("request_id", RequestID(r.Context()))
}

func (app *App) layout(title string) layoutData {
	return layoutData{Title: title, HTMX: app.HTMXSrc != ""}
}

func (app *App) pageIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	items, err := app.Store.List(r.Context())
	if err != nil {
		app.logger(r).Error("failed to list items", "error", err)
		http.Error(w, "Failed to load items", http.StatusInternalServerError)
		return
	}

	state := browser.NewState(app.PageSize)
	state.SetSearch(q.Get("q"))
	state.Replace(items)
	page, _ := strconv.Atoi(q.Get("page"))
	state.GoTo(page)
	if id, err := strconv.ParseInt(q.Get("edit"), 10, 64); err == nil {
		state.StartEdit(id)
	}

	data := indexData{
		layoutData: app.layout("CRUD Mini Project"),
		Page:       state.Visible(),
		Search:     state.Search(),
	}
	data.EditingID, data.EditValue, data.Editing = state.Editing()

	// If HTMX requested just the list, render the fragment
	name := "layout"
	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Boosted") == "" {
		name = "item-list"
	}
	app.render(w, r, "index", name, data)
}

func (app *App) createItem(w http.ResponseWriter, r *http.Request) {
	if name := r.PostFormValue("name"); name != "" {
		item, err := app.Store.Create(r.Context(), name)
		if err != nil {
			app.logger(r).Error("failed to create item", "input", name, "error", err)
			http.Error(w, "Failed to create item", http.StatusInternalServerError)
			return
		}
		app.logger(r).Info("item created", "input", item.ID)
	}
	backToIndex(w, r)
}

func (app *App) renameItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := app.Store.Update(r.Context(), id, r.PostFormValue("name"))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		app.logger(r).Error("failed to rename item", "input", id, "error", err)
		http.Error(w, "Failed to rename item", http.StatusInternalServerError)
		return
	}
	backToIndex(w, r)
}

func (app *App) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := app.Store.Delete(r.Context(), id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		app.logger(r).Error("failed to delete item", "input", id, "error", err)
		http.Error(w, "Failed to delete item", http.StatusInternalServerError)
		return
	}
	backToIndex(w, r)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// backToIndex redirects to the list, keeping the search and page the form
// was posted from. The list is then read again from the store.
func backToIndex(w http.ResponseWriter, r *http.Request) {
	v := url.Values{}
	if q := r.PostFormValue("q"); q != "" {
		v.Set("q", q)
	}
	if p := r.PostFormValue("page"); p != "" {
		v.Set("page", p)
	}
	target := "/"
	if len(v) > 0 {
		target += "?" + v.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (app *App) pageWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := weatherData{
		layoutData: app.layout("Weather App"),
		Latitude:   DefaultLatitude,
		Longitude:  DefaultLongitude,
	}

	if q.Has("latitude") || q.Has("longitude") {
		data.Latitude = q.Get("latitude")
		data.Longitude = q.Get("longitude")

		cur, err := app.Weather.Current(r.Context(), data.Latitude, data.Longitude)
		if err != nil {
			app.logger(r).Warn("weather lookup failed", "input", data.Latitude+","+data.Longitude, "error", err)
			data.Error = weather.Message
		} else {
			data.Weather = &cur
		}
	}

	app.render(w, r, "weather", "layout", data)
}

func (app *App) apiWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cur, err := app.Weather.Current(r.Context(), q.Get("latitude"), q.Get("longitude"))
	if err != nil {
		app.logger(r).Warn("weather lookup failed", "input", q.Get("latitude")+","+q.Get("longitude"), "error", err)
		api.WriteError(w, http.StatusBadGateway, weather.Message)
		return
	}
	api.WriteJSON(w, http.StatusOK, cur)
}

func (app *App) render(w http.ResponseWriter, r *http.Request, page, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := app.Views.Render(w, page, name, data); err != nil {
		app.logger(r).Error("failed to render page", "input", page, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
