// Package provider defines the contract between the completion pipeline and
// an external code-suggestion service.
package provider

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Session describes the editor that is connected to the server.
type Session struct {
	ClientName    string
	ClientVersion string
}

// Request is everything a provider needs to produce suggestions for one
// completion trigger.
type Request struct {
	Path           string
	LanguageID     string
	Text           string
	Position       protocol.Position
	Offset         int // Position as UTF-16 code units from the start of Text
	MaxSuggestions int
	Session        Session
}

// Provider turns a completion request into editor completion items.
//
// Implementations must not return an error for provider-side failures: a
// transport failure yields no items, a provider error yields a single
// descriptive item.
type Provider interface {
	Completions(ctx context.Context, req Request) []protocol.CompletionItem
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, req Request) []protocol.CompletionItem

// Completions calls f.
func (f ProviderFunc) Completions(ctx context.Context, req Request) []protocol.CompletionItem {
	return f(ctx, req)
}

// LineEdit builds a completion item whose edit replaces the whole line under
// the cursor with text.
func LineEdit(line protocol.UInteger, label string, text string) protocol.CompletionItem {
	kind := protocol.CompletionItemKindText
	format := protocol.InsertTextFormatPlainText
	return protocol.CompletionItem{
		Label:            label,
		Kind:             &kind,
		InsertTextFormat: &format,
		TextEdit: protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: 0},
				End:   protocol.Position{Line: line + 1, Character: 0},
			},
			NewText: text,
		},
	}
}

// Placeholder builds an inert completion item that only carries a message,
// used to surface provider failures inline.
func Placeholder(label string, detail string) protocol.CompletionItem {
	kind := protocol.CompletionItemKindText
	empty := ""
	item := protocol.CompletionItem{
		Label:      label,
		Kind:       &kind,
		InsertText: &empty,
	}
	if detail != "" {
		item.Detail = &detail
		item.Documentation = protocol.MarkupContent{
			Kind:  protocol.MarkupKindPlainText,
			Value: detail,
		}
	}
	return item
}
