package client

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const maxRawErrorBody = 200

var cannedStatusMessages = map[int]string{
	http.StatusUnauthorized:        "Authentication required. Please log in again.",
	http.StatusForbidden:           "You do not have permission to perform this action.",
	http.StatusNotFound:            "The requested resource was not found.",
	http.StatusTooManyRequests:     "Too many requests. Please wait a moment and try again.",
	http.StatusInternalServerError: "The server encountered an internal error.",
	http.StatusBadGateway:          "The server is unreachable behind its gateway.",
	http.StatusServiceUnavailable:  "The service is temporarily unavailable.",
	http.StatusGatewayTimeout:      "The server took too long to respond.",
}

// errorMessage picks the human-readable message for a non-2xx response.
func errorMessage(status int, contentType string, body []byte) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		if msg := jsonErrorMessage(body); msg != "" {
			return msg
		}
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		if title := htmlTitle(body); title != "" {
			return title
		}
	}

	if msg, ok := cannedStatusMessages[status]; ok {
		return msg
	}
	if raw := truncate(strings.TrimSpace(string(body)), maxRawErrorBody); raw != "" {
		return raw
	}
	return http.StatusText(status)
}

func jsonErrorMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	var detail string
	if json.Unmarshal(payload.Detail, &detail) == nil {
		return detail
	}
	return ""
}

// htmlTitle returns the collapsed text of the first <title> element.
func htmlTitle(body []byte) string {
	z := html.NewTokenizer(bytes.NewReader(body))
	inTitle := false
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return strings.Join(strings.Fields(b.String()), " ")
			}
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "title" && inTitle {
				return strings.Join(strings.Fields(b.String()), " ")
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
