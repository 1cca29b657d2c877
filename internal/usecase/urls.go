package usecase

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ensureScheme prefixes https:// when the link carries no scheme, so stored
// links are always navigable.
func ensureScheme(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if strings.Contains(link, "://") {
		return link
	}
	return "https://" + link
}

// normalizeURLKey reduces a URL to a comparable dedup key: registrable
// domain where derivable (www stripped), plus the path without a trailing
// slash. Unparseable input falls back to the lowercased raw string.
func normalizeURLKey(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(ensureScheme(raw))
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	host := parsed.Hostname()
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		host = etld
	}
	host = strings.TrimPrefix(host, "www.")
	return host + strings.TrimRight(parsed.Path, "/")
}
