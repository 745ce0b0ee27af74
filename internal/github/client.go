// Package github is a narrow client for the single issue-tracker endpoint the
// bot consumes.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/config"
	apperrors "github.com/lizardlabs/ticketbot/pkg/util"
)

// DefaultBaseURL is the production GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// Distinguishable failure kinds of issue creation.
var (
	// ErrUnauthorized signals a bad or expired token (HTTP 401).
	ErrUnauthorized = errors.New("github token rejected")
	// ErrRepoNotFound signals a missing repository or no access (HTTP 404).
	ErrRepoNotFound = errors.New("github repository not found or not accessible")
)

// Issue is the created issue as returned by the tracker.
type Issue struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// Client creates issues in the configured repository.
type Client struct {
	// BaseURL may be pointed at a test server.
	BaseURL string

	httpClient *http.Client
	cfg        config.GitHubConfig
	logger     *zap.Logger
}

// NewClient constructs the issue-tracker client.
func NewClient(cfg config.GitHubConfig, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cfg:        cfg,
		logger:     logger,
	}
}

// Enabled reports whether a tracker token is configured.
func (c *Client) Enabled() bool {
	return c.cfg.Token != ""
}

// CreateIssue submits an issue with the configured labels. On any transport,
// configuration, or API failure the returned issue is nil and the error
// explains the failure kind; callers surface a generic notice and must not
// treat this as fatal.
func (c *Client) CreateIssue(ctx context.Context, title, body string) (*Issue, error) {
	owner, repo, ok := strings.Cut(c.cfg.Repo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, apperrors.NewConfigError(
			"GitHub integration is misconfigured. Please contact an administrator.",
			fmt.Errorf("invalid repository format %q, want owner/repo", c.cfg.Repo))
	}

	payload, err := json.Marshal(map[string]any{
		"title":  title,
		"body":   body,
		"labels": c.cfg.Labels,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues", c.BaseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+c.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Lizard-Discord-Bot")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("github request failed", zap.Error(err))
		return nil, apperrors.NewExternalError("Failed to create GitHub issue.", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalError("Failed to create GitHub issue.", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Error("github rejected token", zap.Int("status", resp.StatusCode), zap.ByteString("body", raw))
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, raw)
	case resp.StatusCode == http.StatusNotFound:
		c.logger.Error("github repository not found",
			zap.String("repo", c.cfg.Repo),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, raw)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Error("github issue creation failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return nil, apperrors.NewExternalError("Failed to create GitHub issue.",
			fmt.Errorf("github api status %d: %s", resp.StatusCode, raw))
	}

	var issue Issue
	if err := json.Unmarshal(raw, &issue); err != nil {
		return nil, apperrors.NewExternalError("Failed to create GitHub issue.", err)
	}
	c.logger.Info("github issue created", zap.Int("number", issue.Number), zap.String("url", issue.HTMLURL))
	return &issue, nil
}
