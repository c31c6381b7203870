package handlers

import (
	"net/http"

	"github.com/dferrand/cpetrack/auth"
	"github.com/dferrand/cpetrack/internal/models"
	"github.com/dferrand/cpetrack/validation"
	"github.com/dferrand/cpetrack/view"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		view.Render(w, r, "login.html", nil)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	var user models.User
	if err := h.db.Where("username = ?", username).First(&user).Error; err != nil {
		view.Render(w, r, "login.html", map[string]any{"Error": "login_failed"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		view.Render(w, r, "login.html", map[string]any{"Error": "login_failed"})
		return
	}

	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		view.Render(w, r, "signup.html", nil)
		return
	}

	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")

	v := make(validation.Violations)
	validation.Required("username", username, v)
	validation.MaxLength("username", username, 64, v)
	validation.Required("email", email, v)
	validation.MaxLength("email", email, 120, v)
	if len(password) < 6 {
		v["password"] = "required"
	}
	if !v.Empty() {
		view.Render(w, r, "signup.html", map[string]any{"Violations": v})
		return
	}

	var count int64
	h.db.Model(&models.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		view.Render(w, r, "signup.html", map[string]any{"Error": "username_taken"})
		return
	}
	h.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		view.Render(w, r, "signup.html", map[string]any{"Error": "email_taken"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user := models.User{Username: username, Email: email, Password: string(hashed)}
	if err := h.db.Create(&user).Error; err != nil {
		view.Render(w, r, "signup.html", map[string]any{"Error": "username_taken"})
		return
	}

	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
