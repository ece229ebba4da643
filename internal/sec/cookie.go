package sec

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CookieName is the name of the cookie carrying the session token.
const CookieName = "__session"

// CookieCodec encodes and decodes the session token to and from HTTP cookie
// headers. The token is the only session value ever sent to a client. Values
// are percent-encoded like JavaScript's encodeURIComponent, so every reserved
// byte (including + = & $ : @) is escaped.
type CookieCodec struct {
	maxAge time.Duration
}

// NewCookieCodec returns a codec whose cookies expire after maxAge, which
// should match the session TTL.
func NewCookieCodec(maxAge time.Duration) CookieCodec {
	return CookieCodec{maxAge: maxAge}
}

// Encode returns the Set-Cookie header value carrying token. Max-Age rounds
// up to whole seconds so the cookie never expires before the session does.
func (c CookieCodec) Encode(token string) string {
	maxAge := (c.maxAge + time.Second - 1) / time.Second
	return c.cookie(escapeComponent(token), int(maxAge)).String()
}

// Clear returns the Set-Cookie header value that removes the session cookie
// from the client immediately.
func (c CookieCodec) Clear() string {
	return c.cookie("", -1).String()
}

// Decode extracts the session token from a Cookie request header. An absent,
// empty, or undecodable cookie yields an empty token.
func (c CookieCodec) Decode(header string) string {
	if header == "" {
		return ""
	}
	req := http.Request{Header: http.Header{"Cookie": {header}}}
	cookie, err := req.Cookie(CookieName)
	if err != nil {
		return ""
	}
	token, err := url.PathUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return token
}

// escapeComponent leaves only unreserved characters bare. QueryEscape already
// does, except that it writes spaces as '+'.
func escapeComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

func (c CookieCodec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
