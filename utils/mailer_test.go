package utils

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestAPIMailerWireFormat(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = r.PostForm
	}))
	defer srv.Close()

	m := &APIMailer{
		Endpoint: srv.URL,
		APIKey:   "key-123",
		From:     "no-reply@example.com",
		FromName: "Riverside",
		Client:   srv.Client(),
	}
	if err := m.Send("pastor@example.com", "Hello", "body text"); err != nil {
		t.Fatalf("send: %v", err)
	}

	want := map[string]string{
		"apikey":   "key-123",
		"subject":  "Hello",
		"from":     "no-reply@example.com",
		"fromName": "Riverside",
		"to":       "pastor@example.com",
		"bodyText": "body text",
	}
	for k, v := range want {
		if got.Get(k) != v {
			t.Fatalf("field %s = %q, want %q", k, got.Get(k), v)
		}
	}
}

func TestAPIMailerReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	m := &APIMailer{Endpoint: srv.URL, APIKey: "k", Client: srv.Client()}
	if err := m.Send("x@example.com", "s", "b"); err == nil {
		t.Fatalf("expected error from non-200 response")
	}
}

func TestContactBodyEmbedsSender(t *testing.T) {
	body := ContactBody("Ana", "ana@example.com", "see you sunday")
	for _, want := range []string{"Ana", "ana@example.com", "see you sunday"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body %q missing %q", body, want)
		}
	}
}

func TestValidEmailAddress(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"a@b.com", true},
		{"first.last@church.org", true},
		{"missing-at.com", false},
		{"missing-dot@com", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidEmailAddress(c.in); got != c.ok {
			t.Fatalf("ValidEmailAddress(%q) = %v, want %v", c.in, got, c.ok)
		}
	}
}
