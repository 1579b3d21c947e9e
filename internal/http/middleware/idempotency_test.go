package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type seen struct {
	key            string
	hasKey         bool
	replay, bypass bool
	handlerReached bool
}

func idemEngine(opts IdempotencyOptions, lookup IdempotencyLookup, got *seen) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyValidator(opts, lookup))
	h := func(c *gin.Context) {
		got.handlerReached = true
		got.key, got.hasKey = GetIdempotencyKey(c)
		got.replay, got.bypass = IsReplay(c), IsRateBypass(c)
		c.Status(http.StatusCreated)
	}
	r.POST("/api/orders", h)
	r.PUT("/api/proposals/:id/close", h)
	return r
}

func sendKey(r http.Handler, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestContextHelpers_DefaultsAndWrongTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) || IsRateBypass(c) {
		t.Fatalf("fresh context should carry nothing")
	}
	c.Set(ctxKeyIdemKey, 123)
	c.Set(ctxKeyIdemReplay, "yes")
	if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) {
		t.Fatalf("wrongly typed values must read as absent")
	}
}

func TestIdempotencyValidator_NoHeaderSkipsLookup(t *testing.T) {
	called := false
	lookup := func(context.Context, string, string, time.Time) (bool, error) {
		called = true
		return true, nil
	}
	var got seen
	w := sendKey(idemEngine(IdempotencyOptions{}, lookup, &got), http.MethodPost, "/api/orders", "")
	if w.Code != http.StatusCreated || got.hasKey || called {
		t.Fatalf("code=%d seen=%+v lookupCalled=%v", w.Code, got, called)
	}
}

func TestIdempotencyValidator_RejectsBadKeys(t *testing.T) {
	cases := []struct {
		name string
		opts IdempotencyOptions
		key  string
	}{
		{"too long", IdempotencyOptions{MaxLen: 5}, "abcdef"},
		{"default cap", IdempotencyOptions{}, strings.Repeat("k", 201)},
		{"space", IdempotencyOptions{}, "two words"},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got seen
			w := sendKey(idemEngine(tc.opts, nil, &got), http.MethodPost, "/api/orders", tc.key)
			if w.Code != http.StatusBadRequest || got.handlerReached {
				t.Fatalf("code=%d reached=%v", w.Code, got.handlerReached)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "bad_idempotency_key" {
				t.Fatalf("body=%s err=%v", w.Body.String(), err)
			}
		})
	}
}

func TestIdempotencyValidator_LookupOutcomes(t *testing.T) {
	cases := []struct {
		name           string
		path, method   string
		wantScope      string
		exists         bool
		err            error
		replay, bypass bool
	}{
		{"nil lookup", "/api/orders", http.MethodPost, "", false, nil, false, false},
		{"miss", "/api/orders", http.MethodPost, "/api/orders", false, nil, false, false},
		{"hit", "/api/proposals/7/close", http.MethodPut, "/api/proposals/:id/close", true, nil, true, true},
		{"lookup error is a miss", "/api/orders", http.MethodPost, "/api/orders", true, errors.New("db down"), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var lookup IdempotencyLookup
			if tc.wantScope != "" {
				lookup = func(_ context.Context, scope, key string, now time.Time) (bool, error) {
					if scope != tc.wantScope || key != "key-1" || now.IsZero() {
						t.Errorf("lookup(%q, %q, %v)", scope, key, now)
					}
					if tc.err != nil {
						return false, tc.err
					}
					return tc.exists, nil
				}
			}
			var got seen
			w := sendKey(idemEngine(IdempotencyOptions{}, lookup, &got), tc.method, tc.path, "key-1")
			if w.Code != http.StatusCreated {
				t.Fatalf("code=%d", w.Code)
			}
			if got.key != "key-1" || got.replay != tc.replay || got.bypass != tc.bypass {
				t.Fatalf("seen=%+v", got)
			}
		})
	}
}
