package client

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Endpoint is where the registration API lives.
type Endpoint struct {
	Host   string
	Port   int
	UseTLS bool
}

// BuildURL renders a request URL. Every segment has its surrounding slashes
// trimmed and is path-escaped on its own, empty segments are skipped, and the
// query is encoded with sorted keys, so the result is deterministic.
func BuildURL(ep Endpoint, query url.Values, segments ...string) string {
	var b strings.Builder
	if ep.UseTLS {
		b.WriteString("https://")
	} else {
		b.WriteString("http://")
	}

	host := strings.TrimSpace(ep.Host)
	if ep.Port > 0 {
		b.WriteString(net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(ep.Port)))
	} else {
		b.WriteString(host)
	}

	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}

	if enc := query.Encode(); enc != "" {
		b.WriteByte('?')
		b.WriteString(enc)
	}
	return b.String()
}
