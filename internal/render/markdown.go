// Package render converts event descriptions from Markdown into sanitized
// HTML.
package render

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// sanitizer strips everything bluemonday's UGC policy does not allow. Event
// descriptions come from hosts, so script injection has to be assumed.
var sanitizer = bluemonday.UGCPolicy()

// Markdown converts a Markdown description into HTML safe to embed in a
// page.
func Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return sanitizer.Sanitize(buf.String()), nil
}
