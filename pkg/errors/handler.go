// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"strings"

	"github.com/jllopis/pagepilot/pkg/i18n"
)

// Handler turns raw failures into localized, suggestion-annotated
// AgentErrors.
type Handler struct {
	catalog *i18n.Catalog
	lang    string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithCatalog sets the message catalog.
func WithCatalog(c *i18n.Catalog) HandlerOption {
	return func(h *Handler) {
		if c != nil {
			h.catalog = c
		}
	}
}

// WithLanguage sets the output language (BCP 47 tag).
func WithLanguage(lang string) HandlerOption {
	return func(h *Handler) {
		h.lang = lang
	}
}

// NewHandler creates a Handler using the default catalog and English.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{catalog: i18n.Default(), lang: "en"}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Language returns the configured output language.
func (h *Handler) Language() string { return h.lang }

// Catalog returns the message catalog.
func (h *Handler) Catalog() *i18n.Catalog { return h.catalog }

// NewAgentError classifies err and wraps it with a localized message, the
// recoverability flag and either the given or the default suggestions.
// The raw error text is kept in Details["cause"].
func (h *Handler) NewAgentError(err error, suggestions ...string) *AgentError {
	t := Classify(err)
	ae := New(t, h.catalog.Message(h.lang, messageKey(t)), err)
	if err != nil {
		ae.WithDetail("cause", err.Error())
	}
	if len(suggestions) > 0 {
		ae.WithSuggestions(suggestions...)
	} else {
		ae.WithSuggestions(h.catalog.Suggestions(h.lang, messageKey(t))...)
	}
	return ae
}

// Localize builds an AgentError of type t without an underlying cause.
func (h *Handler) Localize(t Type, suggestions ...string) *AgentError {
	ae := New(t, h.catalog.Message(h.lang, messageKey(t)), nil)
	if len(suggestions) == 0 {
		suggestions = h.catalog.Suggestions(h.lang, messageKey(t))
	}
	return ae.WithSuggestions(suggestions...)
}

// Format renders an error message followed by bulleted suggestions.
func (h *Handler) Format(message string, suggestions []string) string {
	if len(suggestions) == 0 {
		return message
	}
	var b strings.Builder
	b.WriteString(message)
	b.WriteString("\n\n")
	b.WriteString(h.catalog.Message(h.lang, i18n.KeySuggestions))
	for _, s := range suggestions {
		b.WriteString("\n• ")
		b.WriteString(s)
	}
	return b.String()
}

// FormatError renders ae for display. Stack traces and raw causes are never
// included.
func (h *Handler) FormatError(ae *AgentError) string {
	if ae == nil {
		return ""
	}
	return h.Format(ae.Message, ae.Suggestions)
}

func messageKey(t Type) i18n.Key {
	return i18n.Key("error." + string(t))
}
