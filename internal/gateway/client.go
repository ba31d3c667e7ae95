package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"recipe-admin/pkg/apierror"
)

const (
	codeUnauthenticated = "UNAUTHENTICATED"
	loginPath           = "/login"
	maxResponseBytes    = 8 << 20
	breakerTripFailures = 5
)

var errUpstreamStatus = errors.New("remote api answered with a server error")

// Session is the part of the session store the gateway needs: the bearer
// token read per request and the forced logout.
type Session interface {
	Token() string
	Logout()
}

// Navigator tells the UI layer to move to another page.
type Navigator func(path string)

type Client struct {
	endpoint   string
	httpClient *http.Client
	session    Session
	navigate   Navigator
	breaker    *gobreaker.CircuitBreaker
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithNavigator(nav Navigator) Option {
	return func(c *Client) { c.navigate = nav }
}

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(settings gobreaker.Settings) Option {
	return func(c *Client) { c.breaker = newBreaker(settings) }
}

func New(endpoint string, timeout time.Duration, session Session, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		session:    session,
		breaker: newBreaker(gobreaker.Settings{
			Name:        "graphql",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     10 * time.Second,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

type GraphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// Do runs op and decodes its data object into out.
func (c *Client) Do(ctx context.Context, op Operation, variables map[string]any, out any) error {
	start := time.Now()

	body, err := json.Marshal(request{Query: op.Query, Variables: variables, OperationName: op.Name})
	if err != nil {
		return apierror.New("ENCODE_FAILED", "failed to encode request", err.Error(), http.StatusInternalServerError).WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return apierror.New("REQUEST_FAILED", "failed to build request", err.Error(), http.StatusInternalServerError).WithCause(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Authorization", c.authorization())

	result, err := c.breaker.Execute(func() (any, error) {
		return c.roundTrip(req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		slog.Warn("[network error]", "operation", op.Name, "error", err)
		return apierror.New("API_UNAVAILABLE", "remote api is temporarily unavailable", op.Name, http.StatusServiceUnavailable).WithKind(apierror.KindNetwork).WithCause(err)
	}
	if err != nil && !errors.Is(err, errUpstreamStatus) {
		slog.Warn("[network error]", "operation", op.Name, "error", err)
		return networkError(op, err)
	}
	resp := result.(rawResponse)

	var decoded response
	decodeErr := json.Unmarshal(resp.Body, &decoded)

	if resp.StatusCode == http.StatusUnauthorized || hasUnauthenticated(decoded.Errors) {
		slog.Warn("remote api rejected session", "operation", op.Name, "status", resp.StatusCode)
		c.forceLogout()
		return apierror.New(codeUnauthenticated, "session expired, please sign in again", "", http.StatusUnauthorized).WithKind(apierror.KindAuth)
	}

	if len(decoded.Errors) > 0 {
		slog.Debug("graphql operation failed", "operation", op.Name, "duration", time.Since(start), "errors", len(decoded.Errors))
		return graphQLFailure(decoded.Errors)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		slog.Warn("[network error]", "operation", op.Name, "status", resp.StatusCode)
		return networkError(op, err)
	}

	if decodeErr != nil {
		return apierror.New("DECODE_FAILED", "invalid response from remote api", decodeErr.Error(), http.StatusBadGateway).WithKind(apierror.KindAPI).WithCause(decodeErr)
	}

	slog.Debug("graphql operation", "operation", op.Name, "duration", time.Since(start))

	if out == nil || len(decoded.Data) == 0 || string(decoded.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return apierror.New("DECODE_FAILED", "unexpected response shape", err.Error(), http.StatusBadGateway).WithKind(apierror.KindAPI).WithCause(err)
	}

	return nil
}

type rawResponse struct {
	StatusCode int
	Body       []byte
}

// roundTrip sends req and reads the bounded body. 5xx answers are returned
// together with errUpstreamStatus so the breaker counts them.
func (c *Client) roundTrip(req *http.Request) (rawResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rawResponse{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return rawResponse{}, err
	}

	out := rawResponse{StatusCode: resp.StatusCode, Body: raw}
	if resp.StatusCode >= http.StatusInternalServerError {
		return out, errUpstreamStatus
	}
	return out, nil
}

func newBreaker(settings gobreaker.Settings) *gobreaker.CircuitBreaker {
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripFailures
		}
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}
	}
	if settings.OnStateChange == nil {
		settings.OnStateChange = func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("remote api circuit changed", "breaker", name, "from", from.String(), "to", to.String())
		}
	}
	return gobreaker.NewCircuitBreaker(settings)
}

func (c *Client) authorization() string {
	if c.session == nil {
		return ""
	}
	token := c.session.Token()
	if token == "" {
		return ""
	}
	return "Bearer " + token
}

func (c *Client) forceLogout() {
	if c.session != nil {
		c.session.Logout()
	}
	if c.navigate != nil {
		c.navigate(loginPath)
	}
}

func hasUnauthenticated(errs []GraphQLError) bool {
	for _, e := range errs {
		if e.Extensions.Code == codeUnauthenticated {
			return true
		}
	}
	return false
}

func graphQLFailure(errs []GraphQLError) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		if msg := strings.TrimSpace(e.Message); msg != "" {
			messages = append(messages, msg)
		}
	}

	message := "remote api returned an error"
	if len(messages) > 0 {
		message = strings.Join(messages, "; ")
	}

	code := errs[0].Extensions.Code
	if code == "" {
		code = "API_ERROR"
	}

	return apierror.New(code, message, "", http.StatusBadGateway).WithKind(apierror.KindAPI)
}

func networkError(op Operation, err error) error {
	if errors.Is(err, context.Canceled) {
		return apierror.New("REQUEST_CANCELED", "request canceled", op.Name, http.StatusServiceUnavailable).WithKind(apierror.KindNetwork).WithCause(err)
	}
	return apierror.New("NETWORK_ERROR", "remote api is unreachable", err.Error(), http.StatusBadGateway).WithKind(apierror.KindNetwork).WithCause(err)
}
