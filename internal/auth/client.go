// Package auth forwards builder logins to the external admin endpoint.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"sitebuilder/internal/config"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/monitoring"
)

var ErrMissingCredentials = errors.New("username and password are required")

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Result tells the caller where to navigate after a successful login.
type Result struct {
	Redirect string `json:"redirect"`
	Status   int    `json:"status"`
}

// Client submits one multipart form per login. It never retries.
type Client struct {
	http     *resty.Client
	endpoint string
	redirect string
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

func NewClient(cfg config.AuthConfig, logger *zap.Logger, metrics *monitoring.Metrics) *Client {
	http := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "sitebuilder/1.0")

	redirect := cfg.RedirectPath
	if redirect == "" {
		redirect = "/dashboard"
	}
	return &Client{
		http:     http,
		endpoint: cfg.Endpoint,
		redirect: redirect,
		logger:   logger,
		metrics:  metrics,
	}
}

// Login posts name, password and an empty redirect field. Only a 2xx
// status counts as success; the response body is not inspected.
func (c *Client) Login(ctx context.Context, creds Credentials) (Result, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return Result{}, ErrMissingCredentials
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"name":     creds.Username,
			"password": creds.Password,
			"redirect": "",
		}).
		Post(c.endpoint)
	if err != nil {
		err = fmt.Errorf("submit login: %w", err)
		c.metrics.ObserveLogin(err)
		c.logger.Warn("login request failed", zap.String("user", creds.Username), zap.Error(err))
		return Result{}, err
	}

	if !resp.IsSuccess() {
		err := fmt.Errorf("%w: status %d", domain.ErrLoginRejected, resp.StatusCode())
		c.metrics.ObserveLogin(err)
		c.logger.Warn("login rejected", zap.String("user", creds.Username), zap.Int("status", resp.StatusCode()))
		return Result{Status: resp.StatusCode()}, err
	}

	c.metrics.ObserveLogin(nil)
	c.logger.Info("login accepted", zap.String("user", creds.Username))
	return Result{Redirect: c.redirect, Status: resp.StatusCode()}, nil
}
