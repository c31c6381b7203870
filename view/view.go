package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dferrand/cpetrack/i18n"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}

	langResolver = func(r *http.Request) string { return i18n.LangFromContext(r.Context()) }
)

// SetLangResolver allows the host app to provide a custom language resolver.
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the standard func map: i18n plus small display helpers used
// by the dashboard and report pages.
func Funcs(r *http.Request) template.FuncMap {
	lang := langResolver(r)
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		"year": func() int { return time.Now().Year() },
		// cpe formats a CPE value with one decimal, the convention on
		// authority transcripts.
		"cpe":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
		"pct": func(earned, required float64) float64 {
			if required <= 0 {
				return 100
			}
			p := earned / required * 100
			if p > 100 {
				p = 100
			}
			return p
		},
		// dict creates a map from key-value pairs for passing to sub-templates.
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// layoutBase walks upward from a template path to find the directory that
// contains layout.html. If none is found, it returns the template's own
// directory.
func layoutBase(mainPath string) string {
	d := filepath.Dir(mainPath)
	for {
		lp := filepath.Join(d, "layout.html")
		if fi, err := os.Stat(lp); err == nil && !fi.IsDir() {
			return d
		}
		p := filepath.Dir(d)
		if p == d { // reached filesystem root
			return filepath.Dir(mainPath)
		}
		d = p
	}
}

func load(r *http.Request, name string) (*template.Template, error) {
	once.Do(detectBase)
	key := langResolver(r) + "|" + name

	tplCache.RLock()
	if t, ok := tplCache.m[key]; ok {
		tplCache.RUnlock()
		return t, nil
	}
	tplCache.RUnlock()

	mainPath := filepath.Join(baseDir, name)
	if _, err := os.Stat(mainPath); err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}

	files := []string{mainPath}
	if lp := filepath.Join(layoutBase(mainPath), "layout.html"); lp != mainPath {
		if _, err := os.Stat(lp); err == nil {
			files = append([]string{lp}, files...)
		}
	}

	t, err := template.New(filepath.Base(files[0])).Funcs(Funcs(r)).ParseFiles(files...)
	if err != nil {
		return nil, err
	}

	tplCache.Lock()
	tplCache.m[key] = t
	tplCache.Unlock()
	return t, nil
}

// Render executes the named template into a buffer first so a template error
// never produces a half-written page.
func Render(w http.ResponseWriter, r *http.Request, name string, data any) error {
	t, err := load(r, name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}
