package inbound

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

// ErrMalformedJSON is returned in strict mode when the request declares
// application/json but the body is not a JSON object.
var ErrMalformedJSON = errors.New("inbound: malformed json body")

// Strategy names the decoding path that produced the fields.
type Strategy string

const (
	StrategyJSON  Strategy = "json"
	StrategyForm  Strategy = "form"
	StrategyPairs Strategy = "pairs"
	StrategyEmpty Strategy = "empty"
)

// RawRequest is the part of an HTTP request the normalizer looks at.
type RawRequest struct {
	ContentType string
	Body        []byte
}

// Result is the normalized view of a RawRequest.
type Result struct {
	Fields   Fields
	Strategy Strategy
}

// Normalizer turns raw webhook bodies into Fields.
type Normalizer struct {
	// Strict makes an undecodable body declared as application/json fatal.
	// When false the body falls through to the form and pair strategies.
	Strict bool
	logger *logging.Logger
}

// NewNormalizer creates a normalizer.
func NewNormalizer(strict bool, logger *logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{Strict: strict, logger: logger}
}

// Normalize decodes req. Strategies run in priority order: declared JSON, sniffed
// JSON, URL-encoded form, comma separated pairs. It only fails in strict mode.
func (n *Normalizer) Normalize(req RawRequest) (Result, error) {
	raw := strings.TrimSpace(string(req.Body))
	if raw == "" {
		return Result{Fields: Fields{}, Strategy: StrategyEmpty}, nil
	}

	if isJSONContentType(req.ContentType) {
		fields, err := decodeJSONObject(req.Body)
		if err == nil {
			return Result{Fields: fields.normalize(), Strategy: StrategyJSON}, nil
		}
		if n.Strict {
			return Result{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		n.logger.Warn("declared json body did not decode, falling back", "error", err, "content_type", req.ContentType)
	} else if strings.HasPrefix(raw, "{") {
		if fields, err := decodeJSONObject(req.Body); err == nil {
			return Result{Fields: fields.normalize(), Strategy: StrategyJSON}, nil
		}
	}

	if !looksLikePairs(raw) {
		if fields, ok := parseForm(raw); ok {
			return Result{Fields: fields.normalize(), Strategy: StrategyForm}, nil
		}
	}

	fields := Fields{}
	for _, p := range SplitPairs(raw) {
		fields.setIfAbsent(p.Key, p.Value)
	}
	if len(fields) == 0 {
		n.logger.Debug("no fields recovered from body", "content_type", req.ContentType, "bytes", len(req.Body))
		return Result{Fields: fields, Strategy: StrategyEmpty}, nil
	}
	return Result{Fields: fields.normalize(), Strategy: StrategyPairs}, nil
}

func isJSONContentType(contentType string) bool {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.EqualFold(strings.TrimSpace(mediaType), "application/json")
}

// decodeJSONObject decodes body as a single JSON object and coerces values to
// strings. Nulls are dropped so accessor defaults apply.
func decodeJSONObject(body []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("json body is not an object")
	}
	if dec.More() {
		return nil, errors.New("unexpected data after json object")
	}
	fields := make(Fields, len(obj))
	for k, v := range obj {
		s, ok := coerce(v)
		if !ok {
			continue
		}
		fields[k] = s
	}
	return fields, nil
}

func coerce(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// parseForm decodes a URL-encoded body, keeping the first value of each key.
// A malformed escape only affects its own segment: the segment keeps the
// escape as literal text and every other pair still decodes.
func parseForm(raw string) (Fields, bool) {
	if !strings.Contains(raw, "=") {
		return nil, false
	}
	fields := Fields{}
	for _, segment := range strings.Split(raw, "&") {
		if segment == "" {
			continue
		}
		key, value, _ := strings.Cut(segment, "=")
		key = unescapeForm(key)
		if key == "" {
			continue
		}
		fields.setIfAbsent(key, unescapeForm(value))
	}
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}

// unescapeForm decodes '+' and %XX escapes. Escapes that are not valid hex are
// kept verbatim, so "50%" stays "50%".
func unescapeForm(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
