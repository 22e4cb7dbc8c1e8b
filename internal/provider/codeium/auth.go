package codeium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultAPIEndpoint = "https://api.codeium.com"
	profileURL         = "https://www.codeium.com/profile"
)

// AuthURL is the page the user visits to obtain an authentication token for
// the given session.
func AuthURL(sessionID string) string {
	q := url.Values{}
	q.Set("response_type", "token")
	q.Set("redirect_uri", "vim-show-auth-token")
	q.Set("state", sessionID)
	q.Set("scope", "openid profile email")
	q.Set("redirect_parameters_type", "query")
	return profileURL + "?" + q.Encode()
}

type registerResponse struct {
	Name   string `json:"name"`
	APIKey string `json:"api_key"`
}

// Register exchanges an authentication token for an API key.
func Register(ctx context.Context, httpClient *http.Client, apiEndpoint string, token string) (string, error) {
	if apiEndpoint == "" {
		apiEndpoint = DefaultAPIEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	body, err := json.Marshal(map[string]string{"firebase_id_token": strings.TrimSpace(token)})
	if err != nil {
		return "", fmt.Errorf("encode register request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimRight(apiEndpoint, "/")+"/register_user/",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("build register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post register request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read register response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("register user: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var decoded registerResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("decode register response: %w", err)
	}
	if decoded.APIKey == "" {
		return "", fmt.Errorf("register user: response has no api_key")
	}
	return decoded.APIKey, nil
}
