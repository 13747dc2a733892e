// Package urlnorm canonicalizes article URLs for deduplication.
package urlnorm

import (
	"net/url"
	"strings"
)

// Tracking parameters removed during normalization. Keys starting with
// "utm_" are dropped as well.
var dropExact = map[string]bool{
	"fbclid":   true,
	"gclid":    true,
	"yclid":    true,
	"ref":      true,
	"referrer": true,
}

// Normalize canonicalizes a URL so that incidental variations (tracking
// parameters, fragments, duplicate slashes, trailing slash) do not defeat
// duplicate detection. Normalization is best-effort: on parse failure the
// input is returned trimmed of surrounding whitespace. The function is
// idempotent.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = filterQuery(u.RawQuery)

	// Collapse the escaped form so percent-encoded slashes inside a
	// segment survive.
	escaped := collapsePath(u.EscapedPath())
	if decoded, err := url.PathUnescape(escaped); err == nil {
		u.Path = decoded
		u.RawPath = escaped
	} else {
		u.Path = collapsePath(u.Path)
		u.RawPath = ""
	}

	return u.String()
}

// filterQuery re-encodes the query string keeping only non-tracking
// parameters, preserving their original order.
func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	var kept []string
	for _, seg := range strings.Split(rawQuery, "&") {
		if seg == "" {
			continue
		}
		k, v, _ := strings.Cut(seg, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			key = k
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			val = v
		}

		kl := strings.ToLower(key)
		if strings.HasPrefix(kl, "utm_") || dropExact[kl] {
			continue
		}
		kept = append(kept, url.QueryEscape(key)+"="+url.QueryEscape(val))
	}
	return strings.Join(kept, "&")
}

// collapsePath removes empty path segments, which also strips any trailing
// slash. An empty path becomes "/".
func collapsePath(p string) string {
	var parts []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	if len(parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(parts, "/")
}
