// Package inbound recovers a stable set of named fields from webhook bodies whose
// encoding cannot be trusted: JSON, URL-encoded forms, or the comma separated
// key=value dump some automation apps send.
package inbound

import (
	"strings"
	"unicode/utf8"
)

// Field names sent by WhatsAuto.
const (
	FieldApp       = "app"
	FieldSender    = "sender"
	FieldMessage   = "message"
	FieldPhone     = "phone"
	FieldGroupName = "group_name"

	// fieldMessageAlt is accepted when FieldMessage is absent.
	fieldMessageAlt = "Message"
)

// Defaults substituted for missing fields.
const (
	DefaultUnknown   = "Desconhecido"
	DefaultGroupName = "Não em grupo"
)

// Fields is the normalized key/value view of one inbound request.
type Fields map[string]string

// Get returns the value stored under key, or fallback when it is missing or blank.
func (f Fields) Get(key, fallback string) string {
	if v, ok := f[key]; ok && v != "" {
		return v
	}
	return fallback
}

func (f Fields) App() string       { return f.Get(FieldApp, DefaultUnknown) }
func (f Fields) Sender() string    { return f.Get(FieldSender, DefaultUnknown) }
func (f Fields) Phone() string     { return f.Get(FieldPhone, DefaultUnknown) }
func (f Fields) GroupName() string { return f.Get(FieldGroupName, DefaultGroupName) }

// Message returns the chat text, preferring "message" over "Message". Empty when
// neither is present.
func (f Fields) Message() string {
	if v := f.Get(FieldMessage, ""); v != "" {
		return v
	}
	return f.Get(fieldMessageAlt, "")
}

// HasSender reports whether the sender was supplied rather than defaulted.
func (f Fields) HasSender() bool {
	return f.Get(FieldSender, "") != ""
}

// setIfAbsent stores value under key unless the key is already present.
func (f Fields) setIfAbsent(key, value string) {
	if _, ok := f[key]; !ok {
		f[key] = value
	}
}

// normalize trims and sanitizes every value and folds the message key spelling.
func (f Fields) normalize() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = sanitize(v)
	}
	if _, ok := out[FieldMessage]; !ok {
		if alt, ok := out[fieldMessageAlt]; ok {
			out[FieldMessage] = alt
		}
	}
	return out
}

// sanitize removes NUL bytes and invalid UTF-8 and trims surrounding whitespace.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.TrimSpace(s)
}
