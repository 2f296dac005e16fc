package request

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igfollowers/pkg/errors"
)

func testOptions() Options {
	return Options{
		PathPattern:     "/api/v1/friendships/",
		Methods:         []string{"GET"},
		RequiredHeaders: []string{"Cookie", "X-IG-WWW-Claim"},
		SkipHeaders: []string{"host", "content-length", "connection", "pragma",
			"cache-control", "accept-encoding", "priority"},
	}
}

const capturedRequest = `GET /api/v1/friendships/123456789/followers/?count=12&search_surface=follow_list_page HTTP/2
Host: www.instagram.com
User-Agent: Mozilla/5.0
Accept-Encoding: gzip, deflate, br
Cookie: sessionid=abc%3A123; csrftoken=tok;
X-IG-WWW-Claim: hmac.AAA
X-IG-App-ID: 936619743392459
Priority: u=1, i

`

func TestParseCapturedRequest(t *testing.T) {
	tmpl, err := Parse(strings.NewReader(capturedRequest), testOptions())
	require.NoError(t, err)

	assert.Equal(t, "GET", tmpl.Method())
	assert.Equal(t, "123456789", tmpl.TargetID())
	assert.Equal(t, "https://www.instagram.com/api/v1/friendships/123456789/followers/", tmpl.URL().String())
	assert.Empty(t, tmpl.URL().RawQuery)

	h := tmpl.Header()
	assert.Equal(t, "Mozilla/5.0", h.Get("User-Agent"))
	assert.Equal(t, "hmac.AAA", h.Get("X-IG-WWW-Claim"))
	assert.Equal(t, "936619743392459", h.Get("X-IG-App-ID"))
	for _, skipped := range []string{"Host", "Accept-Encoding", "Priority", "Cookie"} {
		assert.Empty(t, h.Get(skipped), "header %s should not be replayed", skipped)
	}

	cookies := tmpl.Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "sessionid", cookies[0].Name)
	assert.Equal(t, "abc%3A123", cookies[0].Value)
	assert.Equal(t, "csrftoken", cookies[1].Name)
}

func TestParseEndpointResolution(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		host    string
		baseURL string
		want    string
	}{
		{"origin form with host", "/api/v1/friendships/42/followers/", "i.instagram.com", "", "https://i.instagram.com/api/v1/friendships/42/followers/"},
		{"origin form without host", "/api/v1/friendships/42/followers/", "", "", "https://www.instagram.com/api/v1/friendships/42/followers/"},
		{"absolute form", "https://www.instagram.com/api/v1/friendships/42/followers/?count=5", "", "", "https://www.instagram.com/api/v1/friendships/42/followers/"},
		{"base url override", "/api/v1/friendships/42/followers/", "www.instagram.com", "http://127.0.0.1:8080", "http://127.0.0.1:8080/api/v1/friendships/42/followers/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "GET " + tt.target + " HTTP/1.1\n"
			if tt.host != "" {
				raw += "Host: " + tt.host + "\n"
			}
			raw += "Cookie: sessionid=x\nX-IG-WWW-Claim: 0\n\n"

			opts := testOptions()
			opts.BaseURL = tt.baseURL
			tmpl, err := Parse(strings.NewReader(raw), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tmpl.URL().String())
			assert.Equal(t, "42", tmpl.TargetID())
		})
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"empty", "\n\n  \n", "empty"},
		{"wrong method", "POST /api/v1/friendships/1/followers/ HTTP/2\nCookie: a=b\nX-IG-WWW-Claim: 0\n", "POST"},
		{"malformed request line", "GET\n", "malformed request line"},
		{"path mismatch", "GET /api/v1/users/1/info/ HTTP/2\nCookie: a=b\nX-IG-WWW-Claim: 0\n", "follower API"},
		{"non numeric id", "GET /api/v1/friendships/alice/followers/ HTTP/2\nCookie: a=b\nX-IG-WWW-Claim: 0\n", "not numeric"},
		{"missing cookie", "GET /api/v1/friendships/1/followers/ HTTP/2\nX-IG-WWW-Claim: 0\n", `"Cookie"`},
		{"missing claim", "GET /api/v1/friendships/1/followers/ HTTP/2\nCookie: a=b\n", `"X-IG-WWW-Claim"`},
		{"claim after blank line", "GET /api/v1/friendships/1/followers/ HTTP/2\nCookie: a=b\n\nX-IG-WWW-Claim: 0\n", `"X-IG-WWW-Claim"`},
		{"cookie pair without value", "GET /api/v1/friendships/1/followers/ HTTP/2\nCookie: a=b; junk\nX-IG-WWW-Claim: 0\n", "malformed Cookie header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.raw), testOptions())
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrorTypeInput), "expected input error, got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseIgnoresLinesWithoutColon(t *testing.T) {
	raw := "GET /api/v1/friendships/7/followers/ HTTP/2\n" +
		"garbage line\n" +
		"Cookie: a=b\n" +
		"Cookie: c=d\n" +
		"X-IG-WWW-Claim: 0\n"

	tmpl, err := Parse(strings.NewReader(raw), testOptions())
	require.NoError(t, err)
	assert.Len(t, tmpl.Cookies(), 2)
	assert.Len(t, tmpl.Header(), 1)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "request.txt")
		require.NoError(t, os.WriteFile(path, []byte(capturedRequest), 0o600))

		tmpl, err := LoadFile(path, testOptions())
		require.NoError(t, err)
		assert.Equal(t, "123456789", tmpl.TargetID())
	})

	t.Run("missing file names the path", func(t *testing.T) {
		path := filepath.Join(dir, "nope.txt")
		_, err := LoadFile(path, testOptions())
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrorTypeInput))
		assert.Contains(t, err.Error(), path)
	})

	t.Run("parse error names the path", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		_, err := LoadFile(path, testOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}

func TestTemplateNewRequest(t *testing.T) {
	tmpl, err := Parse(strings.NewReader(capturedRequest), testOptions())
	require.NoError(t, err)

	query := url.Values{}
	query.Set("count", "25")
	query.Set("max_id", "QVFE")

	req, err := tmpl.NewRequest(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/api/v1/friendships/123456789/followers/", req.URL.Path)
	assert.Equal(t, "25", req.URL.Query().Get("count"))
	assert.Equal(t, "QVFE", req.URL.Query().Get("max_id"))
	assert.Equal(t, "hmac.AAA", req.Header.Get("X-IG-WWW-Claim"))

	c, err := req.Cookie("sessionid")
	require.NoError(t, err)
	assert.Equal(t, "abc%3A123", c.Value)
}

func TestTemplateReplaysEscapedCookiesVerbatim(t *testing.T) {
	cookieLine := `csrftoken=abc; sessionid=123%3Axyz%3A4; rur="NHA\05412345\0541762000000:01fe2b"`
	raw := "GET /api/v1/friendships/123/followers/ HTTP/2\n" +
		"Cookie: " + cookieLine + ";\n" +
		"X-IG-WWW-Claim: 0\n\n"

	tmpl, err := Parse(strings.NewReader(raw), testOptions())
	require.NoError(t, err)

	cookies := tmpl.Cookies()
	require.Len(t, cookies, 3)
	assert.Equal(t, Cookie{Name: "rur", Value: `"NHA\05412345\0541762000000:01fe2b"`}, cookies[2])

	req, err := tmpl.NewRequest(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Equal(t, []string{cookieLine}, req.Header.Values("Cookie"))

	c, err := req.Cookie("sessionid")
	require.NoError(t, err)
	assert.Equal(t, "123%3Axyz%3A4", c.Value)
}

func TestTemplateIsImmutable(t *testing.T) {
	tmpl, err := Parse(strings.NewReader(capturedRequest), testOptions())
	require.NoError(t, err)

	h := tmpl.Header()
	h.Set("X-IG-WWW-Claim", "tampered")
	u := tmpl.URL()
	u.Host = "evil.example"
	cookies := tmpl.Cookies()
	cookies[0].Value = "tampered"

	req, err := tmpl.NewRequest(context.Background(), url.Values{})
	require.NoError(t, err)
	req.Header.Set("X-Extra", "1")

	assert.Equal(t, "hmac.AAA", tmpl.Header().Get("X-IG-WWW-Claim"))
	assert.Equal(t, "www.instagram.com", tmpl.URL().Host)
	assert.Equal(t, "abc%3A123", tmpl.Cookies()[0].Value)
	assert.Empty(t, tmpl.Header().Get("X-Extra"))
}

func TestTemplateStringHidesSecrets(t *testing.T) {
	tmpl, err := Parse(strings.NewReader(capturedRequest), testOptions())
	require.NoError(t, err)

	s := tmpl.String()
	assert.Contains(t, s, "123456789")
	assert.NotContains(t, s, "abc%3A123")
	assert.NotContains(t, s, "hmac.AAA")
}
