package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestBasicAuth(t *testing.T) {
	handler := BasicAuth("metrics", "s3cret")(okHandler)

	cases := []struct {
		name     string
		user     string
		pass     string
		withAuth bool
		want     int
	}{
		{name: "no credentials", want: http.StatusUnauthorized},
		{name: "wrong password", user: "metrics", pass: "nope", withAuth: true, want: http.StatusUnauthorized},
		{name: "wrong user", user: "admin", pass: "s3cret", withAuth: true, want: http.StatusUnauthorized},
		{name: "valid credentials", user: "metrics", pass: "s3cret", withAuth: true, want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.withAuth {
				req.SetBasicAuth(tc.user, tc.pass)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

// A deployment that never set the password must not expose the endpoint to
// empty credentials.
func TestBasicAuthEmptyPasswordLocksEndpoint(t *testing.T) {
	handler := BasicAuth("metrics", "")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("metrics", "")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
