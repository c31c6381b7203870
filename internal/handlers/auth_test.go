package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dferrand/cpetrack/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSignupAndLogin(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	w := httptest.NewRecorder()
	h.Signup(w, postForm("/signup", url.Values{
		"username": {"carol"},
		"email":    {"carol@example.com"},
		"password": {"hunter22"},
	}))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("signup: got %d, want redirect", w.Code)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Errorf("signup must set a session cookie")
	}

	var user models.User
	if err := db.Where("username = ?", "carol").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter22")); err != nil {
		t.Errorf("stored password is not the bcrypt hash: %v", err)
	}

	w2 := httptest.NewRecorder()
	h.Login(w2, postForm("/login", url.Values{
		"username": {"carol"},
		"password": {"hunter22"},
	}))
	if w2.Code != http.StatusSeeOther {
		t.Fatalf("login: got %d, want redirect", w2.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	if err := db.Create(&models.User{Username: "dave", Email: "d@example.com", Password: string(hashed)}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := httptest.NewRecorder()
	h.Login(w, postForm("/login", url.Values{
		"username": {"dave"},
		"password": {"wrong"},
	}))
	if w.Code == http.StatusSeeOther {
		t.Fatalf("wrong password must not redirect to the dashboard")
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "cpe_session" && c.Value != "" {
			t.Errorf("wrong password must not set a session")
		}
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	form := url.Values{
		"username": {"erin"},
		"email":    {"erin@example.com"},
		"password": {"swordfish"},
	}
	w := httptest.NewRecorder()
	h.Signup(w, postForm("/signup", form))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("first signup: %d", w.Code)
	}

	form.Set("email", "erin2@example.com")
	w2 := httptest.NewRecorder()
	h.Signup(w2, postForm("/signup", form))
	if w2.Code == http.StatusSeeOther {
		t.Fatalf("duplicate username must not sign up")
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("users = %d, want 1", count)
	}
}
