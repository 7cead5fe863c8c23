package middleware

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRealIP(t *testing.T) {
	cases := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"no proxy", "", "192.0.2.1:5000", "192.0.2.1"},
		{"single forwarded", "203.0.113.7", "192.0.2.1:5000", "203.0.113.7"},
		{"forwarded chain", "203.0.113.7, 10.0.0.1", "192.0.2.1:5000", "203.0.113.7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if got := RealIP(req); got != tc.want {
				t.Errorf("RealIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequestLoggerPassesStatusThrough(t *testing.T) {
	h := RequestLogger(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}

// hijackableWriter fakes a writer whose connection can be taken over.
type hijackableWriter struct {
	http.ResponseWriter
	hijacked bool
}

func (w *hijackableWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.hijacked = true
	return nil, nil, errors.New("fake hijack")
}

// Connection upgrades reach the real writer's Hijack through the logger's
// wrapper, via the Unwrap chain http.ResponseController walks.
func TestRequestLoggerPreservesHijacker(t *testing.T) {
	inner := &hijackableWriter{ResponseWriter: httptest.NewRecorder()}

	h := RequestLogger(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		if _, _, err := rc.Hijack(); errors.Is(err, http.ErrNotSupported) {
			t.Errorf("hijacker not reachable through wrapper: %v", err)
		}
	}))

	h.ServeHTTP(inner, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if !inner.hijacked {
		t.Error("Hijack never reached the underlying writer")
	}
}
