package portal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Request is one round trip to the portal. Cookies are sent as given.
type Request struct {
	Method  string
	Path    string
	Header  http.Header
	Body    []byte
	Cookies map[string]string
}

// Response holds the body and the cookies the server set.
type Response struct {
	Body    []byte
	Cookies map[string]string
}

// Transport performs portal round trips.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// HTTPTransport talks to a portal instance over HTTPS.
type HTTPTransport struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPTransport creates a transport for the portal instance URL.
// A nil client gets a default one that does not follow redirects.
func NewHTTPTransport(instance string, client *http.Client) (*HTTPTransport, error) {
	base, err := InstanceURL(instance)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &HTTPTransport{base: base, client: client}, nil
}

// InstanceURL parses a portal instance. A missing scheme defaults to https.
func InstanceURL(instance string) (*url.URL, error) {
	instance = strings.TrimSpace(instance)
	if instance == "" {
		return nil, fmt.Errorf("portal instance is required")
	}
	if !strings.Contains(instance, "://") {
		instance = "https://" + instance
	}
	u, err := url.Parse(instance)
	if err != nil {
		return nil, fmt.Errorf("invalid portal instance %q: %w", instance, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid portal instance %q: missing host", instance)
	}
	return u, nil
}

// Do performs the request. A redirect is reported as an expired session,
// since the portal sends stale sessions to its login page.
func (t *HTTPTransport) Do(ctx context.Context, req Request) (Response, error) {
	u := *t.base
	u.Path = req.Path

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bytes.NewReader(req.Body))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	names := make([]string, 0, len(req.Cookies))
	for name := range req.Cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		httpReq.AddCookie(&http.Cookie{Name: name, Value: req.Cookies[name]})
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%s %s: %w", req.Method, u.Path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return Response{}, fmt.Errorf("%w: redirected to %s", ErrSessionExpired, resp.Header.Get("Location"))
	case resp.StatusCode >= 400:
		return Response{}, &StatusError{Code: resp.StatusCode, URL: u.String()}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("reading response: %w", err)
	}

	cookies := map[string]string{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}
	return Response{Body: body, Cookies: cookies}, nil
}
