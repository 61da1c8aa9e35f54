// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
)

// serverFlags are the connection flags of commands that talk to a running server.
type serverFlags struct {
	server  string
	userID  int64
	userKey string
}

func (f *serverFlags) register(cmd *cobra.Command, serverUsage string) {
	cmd.Flags().StringVar(&f.server, "server", "", serverUsage)
	cmd.Flags().Int64Var(&f.userID, "user-id", 0, "Administrator user id (default $MT_USER_ID)")
	cmd.Flags().StringVar(&f.userKey, "user-key", "", "Administrator user key (default $MT_USER_KEY)")
}

// serverClient calls the server API with a user's credentials.
type serverClient struct {
	base    string
	userID  int64
	userKey string
	http    *http.Client
}

// client resolves credentials from flags or the environment. An empty
// server falls back to localhost on the configured port.
func (f *serverFlags) client(ctx *commandContext) (*serverClient, error) {
	server := f.server
	if server == "" {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return nil, err
		}
		server = "http://localhost:" + strconv.Itoa(cfg.Port)
	}

	userID, userKey := f.userID, f.userKey
	if userID == 0 {
		userID, _ = strconv.ParseInt(os.Getenv("MT_USER_ID"), 10, 64)
	}
	if userKey == "" {
		userKey = os.Getenv("MT_USER_KEY")
	}
	if userID <= 0 || userKey == "" {
		return nil, errors.New("credentials required (--user-id and --user-key, or MT_USER_ID and MT_USER_KEY)")
	}

	return &serverClient{
		base:    strings.TrimRight(server, "/"),
		userID:  userID,
		userKey: userKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *serverClient) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(middleware.UserIDHeader, strconv.FormatInt(c.userID, 10))
	req.Header.Set(middleware.UserKeyHeader, c.userKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contact server: %w", err)
	}
	return resp, nil
}

// callJSON decodes a 200 response into out. op prefixes errors.
func (c *serverClient) callJSON(ctx context.Context, op, method, path string, out any) error {
	resp, err := c.do(ctx, method, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// nonce fetches a nonce for action.
func (c *serverClient) nonce(ctx context.Context, action string) (string, error) {
	var n models.NonceResponse
	if err := c.callJSON(ctx, "nonce", http.MethodGet, "/nonce?action="+url.QueryEscape(action), &n); err != nil {
		return "", err
	}
	return n.Nonce, nil
}

// ajax posts a nonce-protected form action and decodes the success payload
// into out. A failure envelope becomes an error carrying its message.
func (c *serverClient) ajax(ctx context.Context, action, nonceAction string, form url.Values, out any) error {
	nonce, err := c.nonce(ctx, nonceAction)
	if err != nil {
		return err
	}
	form.Set(middleware.NonceField, nonce)

	resp, err := c.do(ctx, http.MethodPost, "/ajax/"+action, strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// Failed actions answer 400 with the failure envelope
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return bodyError(action, resp.Status, raw)
	}
	if !envelope.Success {
		var msg models.AjaxMessage
		if json.Unmarshal(envelope.Data, &msg) == nil && msg.Message != "" {
			return fmt.Errorf("%s: %s", action, msg.Message)
		}
		return bodyError(action, resp.Status, raw)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// responseError turns a non-200 response into an error.
func responseError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return bodyError(op, resp.Status, raw)
}

// bodyError prefers the JSON error message and quotes plain bodies such as
// a failed nonce check.
func bodyError(op, status string, raw []byte) error {
	var e models.ErrorResponse
	if json.Unmarshal(raw, &e) == nil && e.Message != "" {
		return fmt.Errorf("%s: %s", op, e.Message)
	}
	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") {
		return fmt.Errorf("%s: %s", op, text)
	}
	return fmt.Errorf("%s: server returned %s", op, status)
}
