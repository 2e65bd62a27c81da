package loopback

import (
	"errors"
	"net/url"
	"strings"
)

// MaxRequestSize is the most bytes read from the callback connection.
const MaxRequestSize = 4096

// codeParam is the query parameter carrying the authorization code.
const codeParam = "code"

var errMalformedRequestLine = errors.New("malformed request line")

// AuthorizationResult is the outcome of parsing a callback request: either a code or nothing.
type AuthorizationResult struct {
	code  string
	found bool
}

// Absent is the result for requests that carried no usable code.
var Absent = AuthorizationResult{}

// Code returns a result holding the given authorization code.
// An empty value is treated as [Absent].
func Code(value string) AuthorizationResult {
	if value == "" {
		return Absent
	}
	return AuthorizationResult{code: value, found: true}
}

// Value returns the code and whether one was found.
func (r AuthorizationResult) Value() (string, bool) {
	return r.code, r.found
}

// Found reports whether the result holds a code.
func (r AuthorizationResult) Found() bool {
	return r.found
}

func (r AuthorizationResult) String() string {
	if !r.found {
		return "absent"
	}
	return "code"
}

// Request is a view of the raw bytes read from the callback connection.
type Request struct {
	Raw    []byte
	Method string
	Target string
	Proto  string
}

// ParseRequest extracts the request line from raw. Bytes that are not valid UTF-8 are replaced rather than
// rejected. Only the target is required; method and protocol are recorded when present.
func ParseRequest(raw []byte) (*Request, error) {
	text := strings.ToValidUTF8(string(raw), "�")

	line := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		line = text[:idx]
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, errMalformedRequestLine
	}

	req := &Request{Raw: raw, Method: fields[0], Target: fields[1]}
	if len(fields) > 2 {
		req.Proto = fields[2]
	}
	return req, nil
}

// URL resolves the request target against the loopback origin. Targets are usually origin-form
// ("/path?query"), which url.Parse cannot place without a scheme and host.
func (r *Request) URL() (*url.URL, error) {
	return url.Parse("http://" + Host + r.Target)
}

// AuthorizationResult scans the query string for the code parameter.
//
// Pairs are visited in declaration order and the first one named code decides the outcome, so
// "code=&code=x" is [Absent].
func (r *Request) AuthorizationResult() AuthorizationResult {
	u, err := r.URL()
	if err != nil {
		return Absent
	}

	for pair := range strings.SplitSeq(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		if decodeComponent(name) != codeParam {
			continue
		}
		return Code(decodeComponent(value))
	}
	return Absent
}

// ExtractCode runs the full parse of a raw request and returns the result.
func ExtractCode(raw []byte) AuthorizationResult {
	req, err := ParseRequest(raw)
	if err != nil {
		return Absent
	}
	return req.AuthorizationResult()
}

// decodeComponent decodes a form-encoded query component without failing.
//
// '+' becomes a space and valid %XX escapes are decoded. Invalid escapes are kept as written, and byte sequences
// that do not form valid UTF-8 are replaced with U+FFFD.
func decodeComponent(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
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
	return strings.ToValidUTF8(b.String(), "�")
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
