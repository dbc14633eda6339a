package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"riverside/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("SECRET_KEY", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func guardedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/member", AuthRequired(), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	r.GET("/operator", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func requestWithToken(t *testing.T, r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredRedirectsWithoutSession(t *testing.T) {
	r := guardedRouter()
	w := requestWithToken(t, r, "/member", "")
	if w.Code != http.StatusFound {
		t.Fatalf("code %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect %q", loc)
	}
}

func TestAuthRequiredRejectsTamperedToken(t *testing.T) {
	r := guardedRouter()
	token, err := utils.GenerateSessionToken(5, "Ana", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	w := requestWithToken(t, r, "/member", token+"x")
	if w.Code != http.StatusFound {
		t.Fatalf("tampered token passed, code %d", w.Code)
	}
}

func TestAuthRequiredAcceptsBearerHeader(t *testing.T) {
	r := guardedRouter()
	token, err := utils.GenerateSessionToken(5, "Ana", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/member", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("code %d body %s", w.Code, w.Body.String())
	}
}

func TestAdminRequiredChecksOperatorID(t *testing.T) {
	r := guardedRouter()

	memberToken, err := utils.GenerateSessionToken(2, "Member", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	w := requestWithToken(t, r, "/operator", memberToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("member code %d", w.Code)
	}

	opToken, err := utils.GenerateSessionToken(1, "Operator", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	w = requestWithToken(t, r, "/operator", opToken)
	if w.Code != http.StatusOK {
		t.Fatalf("operator code %d", w.Code)
	}
}
