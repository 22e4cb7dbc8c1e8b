// Package codeium implements provider.Provider against Codeium's
// GetCompletions endpoint.
package codeium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"llmlsp/internal/provider"

	"github.com/tidwall/gjson"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var log = commonlog.GetLogger("llmlsp.codeium")

const (
	DefaultEndpoint = "https://server.codeium.com"
	completionsPath = "/exa.language_server_pb.LanguageServerService/GetCompletions"

	extensionName = "llm-lsp"
	lineEnding    = "\n"
	tabSize       = 4
	insertSpaces  = true

	maxResponseBytes = 4 << 20
)

// Options configures a Client.
type Options struct {
	Endpoint         string
	APIKey           string
	SessionID        string
	ExtensionVersion string
	Timeout          time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client is a stateless Codeium completion gateway. It is safe for concurrent
// use; its configuration is immutable after NewClient.
type Client struct {
	url       string
	apiKey    string
	sessionID string
	version   string
	http      *http.Client
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		url:       strings.TrimRight(endpoint, "/") + completionsPath,
		apiKey:    opts.APIKey,
		sessionID: opts.SessionID,
		version:   opts.ExtensionVersion,
		http:      httpClient,
	}
}

type metadata struct {
	IDEName          string `json:"ide_name"`
	IDEVersion       string `json:"ide_version"`
	ExtensionName    string `json:"extension_name"`
	ExtensionVersion string `json:"extension_version"`
	APIKey           string `json:"api_key"`
	SessionID        string `json:"session_id"`
}

type document struct {
	Text           string   `json:"text"`
	EditorLanguage string   `json:"editor_language"`
	Language       Language `json:"language"`
	CursorOffset   int      `json:"cursor_offset"`
	LineEnding     string   `json:"line_ending"`
	AbsolutePath   string   `json:"absolute_path"`
	RelativePath   string   `json:"relative_path"`
}

type editorOptions struct {
	TabSize      int  `json:"tab_size"`
	InsertSpaces bool `json:"insert_spaces"`
}

type completionRequest struct {
	Metadata       metadata      `json:"metadata"`
	Document       document      `json:"document"`
	EditorOptions  editorOptions `json:"editor_options"`
	OtherDocuments []document    `json:"other_documents"`
}

type completionItem struct {
	Completion struct {
		CompletionID string `json:"completionId"`
		Text         string `json:"text"`
	} `json:"completion"`
	Range *struct {
		StartOffset json.Number `json:"startOffset"`
		EndOffset   json.Number `json:"endOffset"`
	} `json:"range"`
}

type completionResponse struct {
	CompletionItems []completionItem `json:"completionItems"`
}

func (c *Client) payload(req provider.Request) completionRequest {
	return completionRequest{
		Metadata: metadata{
			IDEName:          req.Session.ClientName,
			IDEVersion:       req.Session.ClientVersion,
			ExtensionName:    extensionName,
			ExtensionVersion: c.version,
			APIKey:           c.apiKey,
			SessionID:        c.sessionID,
		},
		Document: document{
			Text:           req.Text,
			EditorLanguage: req.LanguageID,
			Language:       LanguageFor(req.LanguageID),
			CursorOffset:   req.Offset,
			LineEnding:     lineEnding,
			AbsolutePath:   req.Path,
			RelativePath:   req.Path,
		},
		EditorOptions: editorOptions{
			TabSize:      tabSize,
			InsertSpaces: insertSpaces,
		},
		OtherDocuments: []document{},
	}
}

// Completions issues a single GetCompletions call. It never fails: transport
// errors yield no items and provider errors yield one descriptive item.
func (c *Client) Completions(ctx context.Context, req provider.Request) []protocol.CompletionItem {
	ctx, span := tracer.Start(ctx, "codeium.completions", trace.WithAttributes(
		attribute.String("language", req.LanguageID),
		attribute.Int("cursor_offset", req.Offset),
	))
	defer span.End()

	start := time.Now()
	items, outcome := c.complete(ctx, req)
	recordCompletion(ctx, outcome, time.Since(start))
	if items == nil {
		items = []protocol.CompletionItem{}
	}

	span.SetAttributes(
		attribute.String("outcome", string(outcome)),
		attribute.Int("items", len(items)),
	)
	if outcome != OutcomeSuggestions && outcome != OutcomeEmpty {
		span.SetStatus(codes.Error, string(outcome))
	}
	return items
}

func (c *Client) complete(ctx context.Context, req provider.Request) ([]protocol.CompletionItem, Outcome) {
	body, err := json.Marshal(c.payload(req))
	if err != nil {
		log.Errorf("encoding completion request for %s: %v", req.Path, err)
		return nil, OutcomeTransport
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		log.Errorf("building completion request: %v", err)
		return nil, OutcomeTransport
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Warningf("completion request for %s failed: %v", req.Path, err)
		return nil, OutcomeTransport
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warningf("reading completion response for %s: %v", req.Path, err)
		return nil, OutcomeTransport
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return providerError(resp.StatusCode, data)
	}

	var decoded completionResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		log.Warningf("decoding completion response for %s: %v", req.Path, err)
		return []protocol.CompletionItem{
			provider.Placeholder(err.Error(), "codeium returned a malformed response"),
		}, OutcomeMalformed
	}

	if len(decoded.CompletionItems) == 0 {
		return nil, OutcomeEmpty
	}
	return suggestions(decoded.CompletionItems, req), OutcomeSuggestions
}

// suggestions keeps at most req.MaxSuggestions items, in provider order, each
// replacing the line under the cursor.
func suggestions(raw []completionItem, req provider.Request) []protocol.CompletionItem {
	if req.MaxSuggestions > 0 && len(raw) > req.MaxSuggestions {
		raw = raw[:req.MaxSuggestions]
	}
	items := make([]protocol.CompletionItem, 0, len(raw))
	for _, item := range raw {
		text := strings.TrimRightFunc(item.Completion.Text, unicode.IsSpace)
		items = append(items, provider.LineEdit(req.Position.Line, text, text+lineEnding))
	}
	return items
}

// providerError surfaces a non-2xx response. A structured {code, message}
// body becomes a labelled item; anything else becomes a generic placeholder.
func providerError(status int, body []byte) ([]protocol.CompletionItem, Outcome) {
	if gjson.ValidBytes(body) {
		code := gjson.GetBytes(body, "code")
		message := gjson.GetBytes(body, "message")
		if code.Exists() || message.Exists() {
			label := code.String()
			if label == "" {
				label = http.StatusText(status)
			}
			log.Warningf("codeium error %d: %s: %s", status, label, message.String())
			return []protocol.CompletionItem{
				provider.Placeholder(label, message.String()),
			}, OutcomeProviderError
		}
	}

	log.Warningf("codeium error %d with unstructured body (%d bytes)", status, len(body))
	return []protocol.CompletionItem{
		provider.Placeholder(
			fmt.Sprintf("codeium request failed (%d %s)", status, http.StatusText(status)),
			"",
		),
	}, OutcomeUnknownError
}
