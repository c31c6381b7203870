package main

import (
	"net/http"
	"time"

	"github.com/dferrand/cpetrack/auth"
	"github.com/dferrand/cpetrack/i18n"
	"github.com/dferrand/cpetrack/internal/config"
	"github.com/dferrand/cpetrack/internal/handlers"
	"github.com/dferrand/cpetrack/internal/recommend"
	"github.com/dferrand/cpetrack/internal/services"
	"github.com/dferrand/cpetrack/internal/storage"
	"github.com/dferrand/cpetrack/view"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
	db  *gorm.DB
}

// NewApp wires services, handlers and routes.
func NewApp(db *gorm.DB, cfg config.Config, proofs storage.Store) *App {
	app := &App{
		mux: http.NewServeMux(),
		db:  db,
	}

	compliance := services.NewComplianceService(db)
	intake := services.NewIntakeService(db, cfg.Intake.GraceDays)
	certs := services.NewCertificationService(db)
	verify := services.NewVerifyService()
	engine := recommend.NewEngine(recommend.NewHTTPFetcher(time.Duration(cfg.Intake.FetchTimeout) * time.Second))

	ah := handlers.NewAuthHandler(db)
	ch := handlers.NewCertificationHandler(db, certs, compliance, proofs)
	acth := handlers.NewActivityHandler(db, intake, verify, proofs, cfg.Uploads.MaxBytes)
	dh := handlers.NewDashboardHandler(db, compliance)
	eh := handlers.NewExportHandler(db, certs, compliance)
	rh := handlers.NewRecommendHandler(db, engine)

	app.setupRoutes(ah, ch, acth, dh, eh, rh)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Global middleware: session context then language preference
	handler := auth.Middleware(withLanguage(a.mux))
	handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes(ah *handlers.AuthHandler, ch *handlers.CertificationHandler, acth *handlers.ActivityHandler, dh *handlers.DashboardHandler, eh *handlers.ExportHandler, rh *handlers.RecommendHandler) {
	// Public routes
	a.mux.HandleFunc("GET /{$}", a.landingPage)
	a.mux.HandleFunc("GET /login", ah.Login)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("GET /signup", ah.Signup)
	a.mux.HandleFunc("POST /signup", ah.Signup)
	a.mux.HandleFunc("GET /logout", ah.Logout)
	a.mux.HandleFunc("POST /logout", ah.Logout)

	// Authenticated routes
	a.mux.Handle("GET /dashboard", auth.RequireAuth(http.HandlerFunc(dh.Show)))

	// Certifications
	a.mux.Handle("GET /certifications", auth.RequireAuth(http.HandlerFunc(ch.List)))
	a.mux.Handle("GET /certifications/new", auth.RequireAuth(http.HandlerFunc(ch.New)))
	a.mux.Handle("POST /certifications", auth.RequireAuth(http.HandlerFunc(ch.Create)))
	a.mux.Handle("GET /certifications/{id}", auth.RequireAuth(http.HandlerFunc(ch.View)))
	a.mux.Handle("GET /certifications/{id}/edit", auth.RequireAuth(http.HandlerFunc(ch.Edit)))
	a.mux.Handle("POST /certifications/{id}", auth.RequireAuth(http.HandlerFunc(ch.Update)))
	a.mux.Handle("POST /certifications/{id}/delete", auth.RequireAuth(http.HandlerFunc(ch.Delete)))
	a.mux.Handle("POST /certifications/{id}/renew", auth.RequireAuth(http.HandlerFunc(ch.Renew)))
	a.mux.Handle("GET /certifications/{id}/export/{format}", auth.RequireAuth(http.HandlerFunc(eh.Export)))

	// Activities
	a.mux.Handle("GET /activities", auth.RequireAuth(http.HandlerFunc(acth.List)))
	a.mux.Handle("GET /activities/new", auth.RequireAuth(http.HandlerFunc(acth.New)))
	a.mux.Handle("POST /activities", auth.RequireAuth(http.HandlerFunc(acth.Create)))
	a.mux.Handle("POST /activities/{id}/delete", auth.RequireAuth(http.HandlerFunc(acth.Delete)))
	a.mux.Handle("GET /activities/{id}/proof", auth.RequireAuth(http.HandlerFunc(acth.Proof)))
	a.mux.Handle("POST /activities/{id}/verify", auth.RequireAuth(http.HandlerFunc(acth.Verify)))
	a.mux.Handle("POST /activities/{id}/reject", auth.RequireAuth(http.HandlerFunc(acth.Reject)))

	// Recommendations
	a.mux.Handle("GET /recommendations", auth.RequireAuth(http.HandlerFunc(rh.Show)))

	// Static files
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
}

// withLanguage injects the language preference from cookie, query or header.
func withLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); q != "" {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		ctx := i18n.WithLang(r.Context(), lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *App) landingPage(w http.ResponseWriter, r *http.Request) {
	userID, loggedIn := auth.UserIDFromContext(r.Context())
	if loggedIn && userID != 0 {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if err := view.Render(w, r, "index.html", map[string]any{}); err != nil {
		http.Error(w, "Failed to render template: "+err.Error(), http.StatusInternalServerError)
	}
}
