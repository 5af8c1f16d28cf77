package box

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/afero"
)

// Default service endpoints.
const (
	DefaultAPIURL    = "https://api.box.com/2.0"
	DefaultUploadURL = "https://upload.box.com/api/2.0"
	DefaultAuthURL   = "https://www.box.com/api/1.0"
	defaultUserAgent = "boxapi-go/0.1"
)

// Session is an authenticated connection to the Box API. It holds the
// application's API key and, once authorized, the user's auth token.
//
// A Session has no internal locking. Use one Session per call path or guard
// it externally; the key and token do not change after authorization.
type Session struct {
	apiKey    string
	authToken string

	apiURL     string
	uploadURL  string
	userAgent  string
	httpClient *http.Client
	fs         afero.Fs
	logger     *slog.Logger
	auth       *AuthFlow
}

// Option configures a Session.
type Option func(*Session)

// WithAuthToken starts the session in the authorized state with a token
// obtained earlier.
func WithAuthToken(token string) Option {
	return func(s *Session) {
		s.authToken = token
	}
}

// WithHTTPClient overrides the HTTP client. Nil keeps http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithBaseURLs points the session at alternate API, upload and auth
// endpoints. Empty values keep the defaults.
func WithBaseURLs(apiURL, uploadURL, authURL string) Option {
	return func(s *Session) {
		if apiURL != "" {
			s.apiURL = strings.TrimRight(apiURL, "/")
		}

		if uploadURL != "" {
			s.uploadURL = strings.TrimRight(uploadURL, "/")
		}

		if authURL != "" {
			s.auth.baseURL = strings.TrimRight(authURL, "/")
		}
	}
}

// WithFs sets the filesystem uploads are read from. Defaults to the OS.
func WithFs(fs afero.Fs) Option {
	return func(s *Session) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// NewSession creates a session for the given API key. Without
// WithAuthToken the session starts unauthorized and must go through
// BeginAuthorization/Authorize before calling endpoints.
func NewSession(apiKey string, opts ...Option) *Session {
	s := &Session{
		apiKey:     apiKey,
		apiURL:     DefaultAPIURL,
		uploadURL:  DefaultUploadURL,
		userAgent:  defaultUserAgent,
		httpClient: http.DefaultClient,
		fs:         afero.NewOsFs(),
		logger:     slog.Default(),
		auth:       &AuthFlow{baseURL: DefaultAuthURL},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.auth.httpClient = s.httpClient
	s.auth.logger = s.logger
	s.auth.userAgent = s.userAgent

	return s
}

// APIKey returns the application key the session was created with.
func (s *Session) APIKey() string {
	return s.apiKey
}

// AuthToken returns the current auth token, empty when unauthorized.
func (s *Session) AuthToken() string {
	return s.authToken
}

// Authorized reports whether the session holds an auth token.
func (s *Session) Authorized() bool {
	return s.authToken != ""
}

// AuthFlow returns the ticket authorization flow bound to this session's
// endpoints and transport.
func (s *Session) AuthFlow() *AuthFlow {
	return s.auth
}

// FilePart is one file sent as a multipart form part.
type FilePart struct {
	Field    string // form field name
	Filename string
	Content  io.Reader
}

// Request describes a single API call.
type Request struct {
	Method  string
	Path    string
	BaseURL string // empty = API base URL
	Header  http.Header
	Query   url.Values
	JSON    any        // serialized as a JSON body
	Form    url.Values // sent as a form body, or as form fields with Files
	Files   []FilePart
}

// authHeader builds the Authorization header value. The Box v1 scheme
// packs key and token into a query-string-like value.
func authHeader(apiKey, authToken string) string {
	return "BoxAuth api_key=" + apiKey + "&auth_token=" + authToken
}

// Do executes one API request. It makes exactly one round trip; nothing
// is retried.
//
// The body is decoded into a Result (JSON, raw bytes or empty). For a
// non-2xx status, Do returns the decoded Result together with an *APIError
// so callers can inspect the error body.
func (s *Session) Do(ctx context.Context, r Request) (*Result, error) {
	if !s.Authorized() {
		return nil, ErrNotAuthorized
	}

	if r.JSON != nil && (r.Form != nil || len(r.Files) > 0) {
		return nil, fmt.Errorf("%w: a JSON body cannot be combined with form fields or files", ErrValidation)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	base := r.BaseURL
	if base == "" {
		base = s.apiURL
	}

	target := base + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	body, contentType, err := encodeBody(r)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("box: creating request: %w", err)
	}

	req.Header.Set("Authorization", authHeader(s.apiKey, s.authToken))
	req.Header.Set("User-Agent", s.userAgent)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for k, vals := range r.Header {
		req.Header.Del(k)

		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	s.logger.Debug("sending request",
		slog.String("method", method),
		slog.String("path", r.Path),
	)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("box: request canceled: %w", ctx.Err())
		}

		return nil, fmt.Errorf("box: %s %s failed: %w", method, r.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("box: reading response body: %w", err)
	}

	res := newResult(resp.StatusCode, resp.Header, data)

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		s.logger.Debug("request succeeded",
			slog.String("method", method),
			slog.String("path", r.Path),
			slog.Int("status", resp.StatusCode),
		)

		return res, nil
	}

	s.logger.Warn("request failed",
		slog.String("method", method),
		slog.String("path", r.Path),
		slog.Int("status", resp.StatusCode),
	)

	return res, &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("box-request-id"),
		Message:    string(data),
		Err:        classifyStatus(resp.StatusCode),
	}
}

// encodeBody serializes the request body. Files produce multipart content
// with Form values as extra fields.
func encodeBody(r Request) (io.Reader, string, error) {
	switch {
	case len(r.Files) > 0:
		return encodeMultipart(r.Form, r.Files)
	case r.JSON != nil:
		b, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("box: encoding JSON body: %w", err)
		}

		return bytes.NewReader(b), "application/json", nil
	case r.Form != nil:
		return strings.NewReader(r.Form.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return http.NoBody, "", nil
	}
}

func encodeMultipart(fields url.Values, files []FilePart) (io.Reader, string, error) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	for k, vals := range fields {
		for _, v := range vals {
			if err := mw.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("box: writing form field %s: %w", k, err)
			}
		}
	}

	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("box: creating file part %s: %w", f.Field, err)
		}

		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("box: copying file part %s: %w", f.Field, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("box: closing multipart body: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}
