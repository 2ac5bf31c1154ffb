package web

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// pages maps a page name to the files it is parsed from, layout first.
var pages = map[string][]string{
	"index":   {"layout.html", "index.html"},
	"weather": {"layout.html", "weather.html"},
}

// Views holds the parsed page templates.
type Views struct {
	mu    sync.RWMutex
	fsys  fs.FS
	pages map[string]*template.Template
}

// NewViews parses every page from fsys, which holds the view files at its root.
func NewViews(fsys fs.FS) (*Views, error) {
	v := &Views{fsys: fsys}
	if err := v.load(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Views) load() error {
	parsed := make(map[string]*template.Template, len(pages))
	for name, files := range pages {
		tmpl, err := template.ParseFS(v.fsys, files...)
		if err != nil {
			return fmt.Errorf("parse %s view: %w", name, err)
		}
		parsed[name] = tmpl
	}

	v.mu.Lock()
	v.pages = parsed
	v.mu.Unlock()
	return nil
}

// Render executes the named template of page into w. Output is buffered so a
// failing template never sends a half-written page.
func (v *Views) Render(w io.Writer, page, name string, data any) error {
	v.mu.RLock()
	tmpl, ok := v.pages[page]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// WatchDir serves templates from dir and re-parses them whenever a file in
// it changes, until ctx is done. A broken edit keeps the last good templates.
func WatchDir(ctx context.Context, dir string, log *slog.Logger) (*Views, error) {
	v, err := NewViews(os.DirFS(dir))
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch views: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch views: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
					continue
				}
				if err := v.load(); err != nil {
					log.Warn("failed to reload views", "input", event.Name, "error", err)
					continue
				}
				log.Info("views reloaded", "input", event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("views watcher error", "input", dir, "error", err)
			}
		}
	}()

	return v, nil
}
