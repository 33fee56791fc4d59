package robokassa

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// uriComponentUnescaper undoes the differences between url.QueryEscape and
// encodeURIComponent: spaces and the !'()* marks
var uriComponentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent percent-encodes s the way browsers' encodeURIComponent does
func EncodeURIComponent(s string) string {
	return uriComponentUnescaper.Replace(url.QueryEscape(s))
}

// EncodeJSONURI serializes v to JSON and percent-encodes the result with
// EncodeURIComponent
func EncodeJSONURI(v any) (string, error) {
	data, err := marshalJSON(v)
	if err != nil {
		return "", err
	}
	return EncodeURIComponent(string(data)), nil
}

// marshalJSON is json.Marshal without HTML escaping, so <, > and & stay literal
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ToCamelCase converts a field name to camelCase. A single word only gets its
// first letter lowercased ("OutSum" -> "outSum"); space separated words are
// lowercased and joined with each word after the first capitalized
// ("camel case str" -> "camelCaseStr").
func ToCamelCase(s string) string {
	words := strings.Fields(s)
	switch len(words) {
	case 0:
		return ""
	case 1:
		return lowerFirst(words[0])
	}

	var b strings.Builder
	for i, word := range words {
		word = strings.ToLower(word)
		if i == 0 {
			b.WriteString(word)
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(word[size:])
	}
	return b.String()
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

// HasPrefixFold reports whether s begins with prefix, ignoring case
func HasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
