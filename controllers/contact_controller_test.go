package controllers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestContactSendsToOperatorAddress(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"name":    {"Visitor"},
		"email":   {"visitor@example.com"},
		"message": {"when is the next service?"},
	}
	w := env.postForm("/contact", form, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("contact code %d body %s", w.Code, w.Body.String())
	}
	if len(env.mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(env.mailer.sent))
	}
	mail := env.mailer.sent[0]
	if mail.To != "office@example.com" {
		t.Fatalf("recipient %q", mail.To)
	}
	if !strings.Contains(mail.Body, "visitor@example.com") || !strings.Contains(mail.Body, "when is the next service?") {
		t.Fatalf("body missing sender details: %q", mail.Body)
	}
}

func TestContactRejectsBadEmail(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"name": {"V"}, "email": {"not-an-address"}, "message": {"hi"}}
	w := env.postForm("/contact", form, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code %d", w.Code)
	}
	if len(env.mailer.sent) != 0 {
		t.Fatalf("mail sent despite invalid address")
	}
}

func TestContactReportsDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.fail = true

	form := url.Values{"name": {"V"}, "email": {"v@example.com"}, "message": {"hi"}}
	w := env.postForm("/contact", form, nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("code %d body %s", w.Code, w.Body.String())
	}
	if _, msg := decodeEnvelope(t, w); !strings.Contains(msg, "could not be sent") {
		t.Fatalf("message %q", msg)
	}
}
