package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"riverside/models"
	"riverside/utils"
)

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret1")

	form := url.Values{"name": {"Ana Again"}, "email": {"ana@example.com"}, "password": {"other66"}}
	w := env.postForm("/register", form, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register code %d", w.Code)
	}
	if _, msg := decodeEnvelope(t, w); !strings.Contains(msg, "already exists") {
		t.Fatalf("unexpected message %q", msg)
	}

	var count int64
	env.db.Model(&models.User{}).Where("email = ?", "ana@example.com").Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 account, got %d", count)
	}
}

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ben", "ben@example.com", "secret1")

	w := env.postForm("/login", url.Values{"email": {"ben@example.com"}, "password": {"secret1"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("login code %d body %s", w.Code, w.Body.String())
	}
	sessionCookie(t, w)
}

func TestLoginDistinguishesFailures(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Cara", "cara@example.com", "secret1")

	w := env.postForm("/login", url.Values{"email": {"nobody@example.com"}, "password": {"secret1"}}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email code %d", w.Code)
	}
	if _, msg := decodeEnvelope(t, w); msg != "email not found" {
		t.Fatalf("unknown email message %q", msg)
	}

	w = env.postForm("/login", url.Values{"email": {"cara@example.com"}, "password": {"wrong99"}}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password code %d", w.Code)
	}
	if _, msg := decodeEnvelope(t, w); msg != "password incorrect" {
		t.Fatalf("wrong password message %q", msg)
	}
}

func TestResetRequestUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Dan", "dan@example.com", "secret1")

	w := env.postForm("/reset-request", url.Values{"email": {"nobody@example.com"}}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code %d", w.Code)
	}
	if len(env.mailer.sent) != 0 {
		t.Fatalf("mail sent for unknown address: %+v", env.mailer.sent)
	}
}

func TestResetRequestSendsLink(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Eve", "eve@example.com", "secret1")

	w := env.postForm("/reset-request", url.Values{"email": {"eve@example.com"}}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code %d body %s", w.Code, w.Body.String())
	}
	if len(env.mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(env.mailer.sent))
	}
	mail := env.mailer.sent[0]
	if mail.To != "eve@example.com" {
		t.Fatalf("mail recipient %q", mail.To)
	}
	if !strings.Contains(mail.Body, "/reset/1?token=") {
		t.Fatalf("reset link missing from body %q", mail.Body)
	}
}

func TestResetReplacesPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Fay", "fay@example.com", "oldpass1")

	token, err := utils.GenerateResetToken(1)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	form := url.Values{"token": {token}, "password": {"newpass1"}, "confirm": {"newpass1"}}
	w := env.postForm("/reset/1", form, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("reset code %d body %s", w.Code, w.Body.String())
	}

	w = env.postForm("/login", url.Values{"email": {"fay@example.com"}, "password": {"oldpass1"}}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("old password still accepted, code %d", w.Code)
	}
	w = env.postForm("/login", url.Values{"email": {"fay@example.com"}, "password": {"newpass1"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("new password rejected, code %d", w.Code)
	}
}

func TestResetMismatchChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Gil", "gil@example.com", "oldpass1")

	token, err := utils.GenerateResetToken(1)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	form := url.Values{"token": {token}, "password": {"newpass1"}, "confirm": {"different1"}}
	w := env.postForm("/reset/1", form, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("mismatch code %d", w.Code)
	}
	if _, msg := decodeEnvelope(t, w); msg != "passwords do not match" {
		t.Fatalf("mismatch message %q", msg)
	}

	w = env.postForm("/login", url.Values{"email": {"gil@example.com"}, "password": {"oldpass1"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("old password no longer works, code %d", w.Code)
	}
}

func TestResetRejectsForeignToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Hal", "hal@example.com", "oldpass1")
	env.register(t, "Ida", "ida@example.com", "otherpw1")

	// token for user 2 must not reset user 1
	token, err := utils.GenerateResetToken(2)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	form := url.Values{"token": {token}, "password": {"newpass1"}, "confirm": {"newpass1"}}
	w := env.postForm("/reset/1", form, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("code %d body %s", w.Code, w.Body.String())
	}
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Operator", "op@example.com", "secret1")
	member := env.register(t, "Member", "member@example.com", "secret1")

	w := env.get("/users", member)
	if w.Code != http.StatusForbidden {
		t.Fatalf("member /users code %d", w.Code)
	}

	w = env.get("/delete-user/1", member)
	if w.Code != http.StatusForbidden {
		t.Fatalf("member delete-user code %d", w.Code)
	}
	var count int64
	env.db.Model(&models.User{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 users, got %d", count)
	}
}

func TestAdminRoutesRedirectAnonymous(t *testing.T) {
	env := newTestEnv(t)
	w := env.get("/dashboard", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("code %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect to %q", loc)
	}
}

func TestDeleteUserKeepsOperator(t *testing.T) {
	env := newTestEnv(t)
	op := env.register(t, "Operator", "op@example.com", "secret1")
	env.register(t, "Member", "member@example.com", "secret1")

	w := env.get(fmt.Sprintf("/delete-user/%d", models.AdminUserID), op)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("operator self-delete code %d", w.Code)
	}

	w = env.get("/delete-user/2", op)
	if w.Code != http.StatusFound {
		t.Fatalf("delete member code %d", w.Code)
	}
	var count int64
	env.db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 user left, got %d", count)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "Jo", "jo@example.com", "secret1")

	w := env.get("/logout", cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("logout code %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.MaxAge >= 0 {
			t.Fatalf("session cookie not expired: %+v", c)
		}
	}
}
