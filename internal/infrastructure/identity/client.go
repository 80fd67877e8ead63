package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/usecase"
)

// Config holds identity-provider connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the external identity provider over HTTP. All calls
// are bounded by the configured timeout (or an earlier context deadline);
// timeouts and 5xx responses are reported as transient provider errors,
// never as a crash.
type Client struct {
	cfg    Config
	http   *fasthttp.Client
	logger *zap.Logger
}

// NewClient constructs an identity-provider client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg: cfg,
		http: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Demo  bool   `json:"demo"`
}

// GetUser fetches an account snapshot. A 404 maps to
// domain.ErrIdentityNotFound so deletion stays idempotent.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.IdentityRecord, error) {
	status, body, err := c.do(ctx, fasthttp.MethodGet, c.userURL(id))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeProvider, "identity lookup failed", err)
	}

	switch status {
	case http.StatusOK:
		var payload userPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, domain.WrapError(domain.ErrCodeProvider, "malformed identity response", err)
		}
		return &domain.IdentityRecord{
			ID:        payload.ID,
			Email:     payload.Email,
			Name:      payload.Name,
			Role:      payload.Role,
			Demo:      payload.Demo,
			FetchedAt: time.Now(),
		}, nil
	case http.StatusNotFound:
		return nil, domain.ErrIdentityNotFound
	default:
		return nil, domain.WrapError(domain.ErrCodeProvider, "identity lookup failed",
			fmt.Errorf("provider returned status %d", status))
	}
}

// DeleteUser removes the account at the provider. This is the single
// irreversible step of account deletion: afterwards the user cannot
// authenticate and the provider invalidates all sessions.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	status, _, err := c.do(ctx, fasthttp.MethodDelete, c.userURL(id))
	if err != nil {
		return domain.WrapError(domain.ErrCodeProvider, "identity deletion failed", err)
	}

	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return domain.ErrIdentityNotFound
	default:
		return domain.WrapError(domain.ErrCodeProvider, "identity deletion failed",
			fmt.Errorf("provider returned status %d", status))
	}
}

func (c *Client) do(ctx context.Context, method, url string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.cfg.Timeout)
	if ctx != nil {
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}

	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}

func (c *Client) userURL(id string) string {
	return fmt.Sprintf("%s/v1/users/%s", c.cfg.BaseURL, id)
}

var _ usecase.IdentityProvider = (*Client)(nil)
