package simplehttp

import "github.com/pkg/errors"

// Transport error kinds. Any non-nil transport error is fatal to the
// current connection.
var (
	// ErrTimeout is returned when a read or send exceeds the configured
	// socket timeout.
	ErrTimeout = errors.New("simplehttp: i/o timeout")

	// ErrConnectionClosed is returned when the peer has gone away, or when
	// a previous transport error already forced the socket shut.
	ErrConnectionClosed = errors.New("simplehttp: connection closed")
)

// Protocol error kinds, surfaced while parsing the request line, headers,
// or framing the body. All of them cause the connection driver to emit
// "400 Bad Request" (for HTTP/1.x requests) and close the socket.
var (
	ErrMalformedMethod  = errors.New("simplehttp: malformed method")
	ErrMalformedLine    = errors.New("simplehttp: malformed request line")
	ErrMalformedURI     = errors.New("simplehttp: malformed request-uri")
	ErrMalformedVersion = errors.New("simplehttp: malformed http version")

	ErrMalformedHeaderName  = errors.New("simplehttp: malformed header name")
	ErrMalformedHeaderValue = errors.New("simplehttp: malformed header value")
	ErrMalformedHeaderLine  = errors.New("simplehttp: malformed header line")

	ErrBadContentLength = errors.New("simplehttp: bad Content-Length header")

	// ErrBadRequest is what the connection driver returns in place of any
	// request-line, request-URI or header parse error above once it has
	// decided the request cannot be salvaged; the specific parse error is
	// not kept. A bad Content-Length is returned as ErrBadContentLength.
	ErrBadRequest = errors.New("simplehttp: bad request")
)

// ErrBadSyntax is returned by a MessageBody when the peer's framing
// disagrees with the declared Content-Length (sent too much, or closed
// early).
var ErrBadSyntax = errors.New("simplehttp: bad body syntax")

// ErrAlreadySent is returned by OutgoingMessage.WriteHead when the status
// line has already been written for this response.
var ErrAlreadySent = errors.New("simplehttp: response head already sent")

// ErrHandlerFailed marks a connection that ended because the handler
// panicked, returned without writing a response, or started a response
// and never called End.
var ErrHandlerFailed = errors.New("simplehttp: handler failed")
