package box

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Status values the v1 REST endpoint reports on success.
const (
	statusTicketOK = "get_ticket_ok"
	statusTokenOK  = "get_auth_token_ok"
)

// AuthFlow performs the ticket handshake against the v1 REST endpoint:
// request a ticket, send the user to the authorization URL, then exchange
// the ticket for an auth token.
type AuthFlow struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// NewAuthFlow creates a flow against baseURL (DefaultAuthURL when empty).
func NewAuthFlow(baseURL string, httpClient *http.Client, logger *slog.Logger) *AuthFlow {
	if baseURL == "" {
		baseURL = DefaultAuthURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &AuthFlow{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		userAgent:  defaultUserAgent,
	}
}

// restResponse is the XML envelope returned by the v1 REST actions.
type restResponse struct {
	XMLName   xml.Name `xml:"response"`
	Status    string   `xml:"status"`
	Ticket    string   `xml:"ticket"`
	AuthToken string   `xml:"auth_token"`
}

// RequestTicket asks the service for a new authorization ticket.
func (a *AuthFlow) RequestTicket(ctx context.Context, apiKey string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("%w: api key required", ErrValidation)
	}

	a.logger.Info("requesting authorization ticket")

	resp, err := a.call(ctx, url.Values{
		"action":  {"get_ticket"},
		"api_key": {apiKey},
	})
	if err != nil {
		return "", err
	}

	ticket := strings.TrimSpace(resp.Ticket)
	if resp.Status != statusTicketOK || ticket == "" {
		return "", fmt.Errorf("%w: ticket request returned status %q", ErrAuthorization, resp.Status)
	}

	return ticket, nil
}

// AuthorizationURL returns the page the user must visit to grant access
// for ticket. It makes no network call.
func (a *AuthFlow) AuthorizationURL(ticket string) string {
	return a.baseURL + "/auth/" + url.PathEscape(ticket)
}

// ExchangeTicket trades an authorized ticket for an auth token.
func (a *AuthFlow) ExchangeTicket(ctx context.Context, apiKey, ticket string) (string, error) {
	if apiKey == "" || ticket == "" {
		return "", fmt.Errorf("%w: api key and ticket required", ErrValidation)
	}

	a.logger.Info("exchanging ticket for auth token")

	resp, err := a.call(ctx, url.Values{
		"action":  {"get_auth_token"},
		"api_key": {apiKey},
		"ticket":  {ticket},
	})
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(resp.AuthToken)
	if token == "" {
		return "", fmt.Errorf("%w: response has no auth token (status %q)", ErrAuthorization, resp.Status)
	}

	if resp.Status != statusTokenOK {
		a.logger.Warn("token response has unexpected status", slog.String("status", resp.Status))
	}

	return token, nil
}

// call issues one GET against the REST endpoint and decodes the envelope.
func (a *AuthFlow) call(ctx context.Context, params url.Values) (*restResponse, error) {
	action := params.Get("action")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/rest?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("box: creating %s request: %w", action, err)
	}

	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("box: %s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("box: reading %s response: %w", action, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Err:        classifyStatus(resp.StatusCode),
		})
	}

	var rr restResponse
	if err := xml.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("%w: decoding %s response: %w", ErrAuthorization, action, err)
	}

	a.logger.Debug("auth action completed",
		slog.String("action", action),
		slog.String("status", rr.Status),
	)

	return &rr, nil
}

// Authorization is a pending authorization: the ticket and the URL the
// user must visit before Authorize can succeed.
type Authorization struct {
	Ticket string
	URL    string
}

// BeginAuthorization requests a ticket for the session's API key and
// returns it with the URL to show the user.
func (s *Session) BeginAuthorization(ctx context.Context) (*Authorization, error) {
	ticket, err := s.auth.RequestTicket(ctx, s.apiKey)
	if err != nil {
		return nil, err
	}

	return &Authorization{Ticket: ticket, URL: s.auth.AuthorizationURL(ticket)}, nil
}

// Authorize exchanges ticket for an auth token and stores it, moving the
// session to the authorized state.
func (s *Session) Authorize(ctx context.Context, ticket string) error {
	token, err := s.auth.ExchangeTicket(ctx, s.apiKey, ticket)
	if err != nil {
		return err
	}

	s.authToken = token
	s.logger.Info("session authorized")

	return nil
}
