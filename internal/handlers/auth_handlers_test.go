package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-planner/internal/middleware"
)

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AuthCookieName {
			return c
		}
	}
	return nil
}

func TestRegister_SetsSessionAndRedirects(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm("/register", url.Values{
		"username":         {"alice"},
		"password":         {"password123"},
		"password_confirm": {"password123"},
	}, "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	rec = app.get("/", cookie.Value)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You have no plans yet.")
}

func TestRegister_ShowsFieldErrors(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "alice")

	rec := app.postForm("/register", url.Values{
		"username":         {"alice"},
		"password":         {"password123"},
		"password_confirm": {"password123"},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "A user with that username already exists.")

	rec = app.postForm("/register", url.Values{
		"username":         {"bob"},
		"password":         {"password123"},
		"password_confirm": {"different1"},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "match")
	assert.Nil(t, sessionCookie(rec))
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "alice")

	rec := app.postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a correct username and password.")
	assert.Nil(t, sessionCookie(rec))

	rec = app.postForm("/login", url.Values{"username": {"alice"}, "password": {"password123"}}, "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.NotNil(t, sessionCookie(rec))
}

func TestLogin_LockedAccount(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "alice")

	for i := 1; i < 5; i++ {
		rec := app.postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i)
	}
	rec := app.postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}}, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	locked := app.postForm("/login", url.Values{"username": {"alice"}, "password": {"password123"}}, "")
	assert.Equal(t, http.StatusTooManyRequests, locked.Code)
	assert.Contains(t, locked.Body.String(), "Too many failed login attempts")
}

func TestLogout_ClearsCookie(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	rec := app.get("/logout", token)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestProtectedPagesRequireSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = app.postJSON("/chat/send", map[string]string{"message": "hi"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = app.get("/about", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "About PlanAnything")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = app.get("/static/app.css", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
