package request

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	errs "igfollowers/pkg/errors"
)

// DefaultBaseURL is used when the request file carries no Host header
const DefaultBaseURL = "https://www.instagram.com"

// Options controls how a captured request is validated
type Options struct {
	// PathPattern must appear in the request path; the segment after it is the target ID
	PathPattern string
	// Methods allowed on the request line
	Methods []string
	// RequiredHeaders must be present, compared case-insensitively
	RequiredHeaders []string
	// SkipHeaders are dropped from the replayed header set
	SkipHeaders []string
	// BaseURL, when set, replaces the scheme and host of the captured request
	BaseURL string
}

// Template is a captured follower-list request. It is an immutable value:
// accessors hand out copies, so a Template can be shared freely.
type Template struct {
	method   string
	url      url.URL
	header   http.Header
	cookies  []string
	targetID string
}

// Cookie is one name=value pair of the captured Cookie header. Values are
// kept as captured, quotes and escapes included.
type Cookie struct {
	Name  string
	Value string
}

// Method returns the HTTP method of the captured request
func (t Template) Method() string {
	return t.method
}

// URL returns a copy of the endpoint URL without any query string
func (t Template) URL() *url.URL {
	u := t.url
	return &u
}

// Header returns a copy of the replayed headers, without the Cookie header
func (t Template) Header() http.Header {
	return t.header.Clone()
}

// Cookies returns the captured cookie pairs in header order
func (t Template) Cookies() []Cookie {
	out := make([]Cookie, len(t.cookies))
	for i, pair := range t.cookies {
		name, value, _ := strings.Cut(pair, "=")
		out[i] = Cookie{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}
	}
	return out
}

// TargetID returns the numeric account ID whose followers are listed
func (t Template) TargetID() string {
	return t.targetID
}

// String describes the template without leaking header values
func (t Template) String() string {
	return fmt.Sprintf("%s %s (target %s, %d headers, %d cookies)",
		t.method, t.url.String(), t.targetID, len(t.header), len(t.cookies))
}

// NewRequest builds a fresh *http.Request for the template with the given query
func (t Template) NewRequest(ctx context.Context, query url.Values) (*http.Request, error) {
	u := t.URL()
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, t.method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header = t.Header()
	// replayed verbatim: Instagram sets values such as rur="NHA\05412..."
	// that net/http's cookie validation rejects
	if len(t.cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(t.cookies, "; "))
	}
	return req, nil
}

// LoadFile reads and parses a captured request file
func LoadFile(path string, opts Options) (Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return Template{}, errs.NewInputError(path, "cannot open request file", err)
	}
	defer f.Close()

	tmpl, err := Parse(f, opts)
	if err != nil {
		if e, ok := err.(*errs.Error); ok && e.Path == "" {
			e.Path = path
		}
		return Template{}, err
	}
	return tmpl, nil
}

// Parse reads a raw HTTP request: a request line, header lines, then a blank line.
// Anything after the first blank line (a body) is ignored.
func Parse(r io.Reader, opts Options) (Template, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var requestLine string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			requestLine = line
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return Template{}, errs.NewInputError("", "cannot read request file", err)
	}
	if requestLine == "" {
		return Template{}, errs.NewInputError("", "request file is empty", nil)
	}

	parts := strings.Fields(requestLine)
	if len(parts) < 2 {
		return Template{}, errs.NewInputError("", fmt.Sprintf("malformed request line %q", requestLine), nil)
	}
	method := strings.ToUpper(parts[0])
	if !containsFold(opts.Methods, method) {
		return Template{}, errs.NewInputError("", fmt.Sprintf("request method %s is not allowed (want one of %s)",
			method, strings.Join(opts.Methods, ", ")), nil)
	}

	target, err := url.Parse(parts[1])
	if err != nil {
		return Template{}, errs.NewInputError("", fmt.Sprintf("malformed request target %q", parts[1]), err)
	}

	targetID, err := extractTargetID(target.Path, opts.PathPattern)
	if err != nil {
		return Template{}, err
	}

	header := make(http.Header)
	var host, cookieLine string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		switch {
		case strings.EqualFold(name, "host"):
			host = value
		case strings.EqualFold(name, "cookie"):
			cookieLine = joinCookies(cookieLine, value)
			continue
		}
		if containsFold(opts.SkipHeaders, name) {
			continue
		}
		header.Add(name, value)
	}
	if err := scanner.Err(); err != nil {
		return Template{}, errs.NewInputError("", "cannot read request file", err)
	}

	cookies, err := splitCookies(cookieLine)
	if err != nil {
		return Template{}, err
	}

	for _, required := range opts.RequiredHeaders {
		if strings.EqualFold(required, "cookie") {
			if len(cookies) == 0 {
				return Template{}, missingHeader(required)
			}
			continue
		}
		if header.Get(required) == "" {
			return Template{}, missingHeader(required)
		}
	}

	endpoint, err := resolveEndpoint(target, host, opts.BaseURL)
	if err != nil {
		return Template{}, err
	}

	return Template{
		method:   method,
		url:      *endpoint,
		header:   header,
		cookies:  cookies,
		targetID: targetID,
	}, nil
}

func missingHeader(name string) error {
	return errs.NewInputError("", fmt.Sprintf("required header %q not found; capture a complete, fresh request", name), nil)
}

// extractTargetID finds pattern in path and returns the all-digit segment after it
func extractTargetID(path, pattern string) (string, error) {
	_, rest, ok := strings.Cut(path, pattern)
	if !ok {
		return "", errs.NewInputError("", fmt.Sprintf("request path %q does not look like the follower API (expected %q)", path, pattern), nil)
	}
	id, _, _ := strings.Cut(rest, "/")
	if id == "" || strings.Trim(id, "0123456789") != "" {
		return "", errs.NewInputError("", fmt.Sprintf("target ID %q in path %q is not numeric", id, path), nil)
	}
	return id, nil
}

// resolveEndpoint builds the absolute endpoint URL, dropping the captured query
func resolveEndpoint(target *url.URL, host, baseURL string) (*url.URL, error) {
	var base *url.URL
	var err error
	switch {
	case baseURL != "":
		base, err = url.Parse(baseURL)
	case target.IsAbs():
		base = &url.URL{Scheme: target.Scheme, Host: target.Host}
	case host != "":
		base, err = url.Parse("https://" + host)
	default:
		base, err = url.Parse(DefaultBaseURL)
	}
	if err != nil || base.Host == "" {
		return nil, errs.NewInputError("", "cannot determine the request host", err)
	}

	return &url.URL{
		Scheme: base.Scheme,
		Host:   base.Host,
		Path:   strings.TrimSuffix(base.Path, "/") + target.Path,
	}, nil
}

func joinCookies(existing, value string) string {
	if existing == "" {
		return value
	}
	return existing + "; " + value
}

// splitCookies breaks a Cookie header into its name=value pairs without
// validating the values. Empty pairs, such as the one left by a trailing ';',
// are dropped.
func splitCookies(line string) ([]string, error) {
	var pairs []string
	for _, pair := range strings.Split(line, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		if name, _, ok := strings.Cut(pair, "="); !ok || strings.TrimSpace(name) == "" {
			return nil, errs.NewInputError("", fmt.Sprintf("malformed Cookie header: pair %q has no name=value form", pair), nil)
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
