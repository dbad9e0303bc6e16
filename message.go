package simplehttp

// Method is the parsed HTTP request method (spec.md §3).
type Method int

const (
	MethodNone Method = iota
	MethodGet
	MethodHead
	MethodPost
	MethodCustom
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodHead:
		return "HEAD"
	case MethodPost:
		return "POST"
	case MethodCustom:
		return "CUSTOM"
	default:
		return "NONE"
	}
}

// Version is the parsed HTTP protocol version (spec.md §3). VersionNone
// only ever appears before parsing completes; a fully parsed request is
// always 0.9, 1.0 or 1.1.
type Version int

const (
	VersionNone Version = iota
	Version09
	Version10
	Version11
)

func (v Version) String() string {
	switch v {
	case Version09:
		return "HTTP/0.9"
	case Version10:
		return "HTTP/1.0"
	case Version11:
		return "HTTP/1.1"
	default:
		return "HTTP/?"
	}
}

// requestData holds everything the connection driver materializes as
// owned strings before invoking the handler (spec.md §9: "the connection
// must materialize owned copies of every field the handler can observe
// before issuing the advance that follows header parsing").
type requestData struct {
	method        Method
	methodName    string
	href          string
	path          string
	query         string
	version       Version
	headers       *Header
	contentLength int
	body          MessageBody
}

// IncomingMessage is the handler-facing, read-only view of a parsed
// request (spec.md §3 Request, §4.12's "non-owning view of the Request").
type IncomingMessage struct {
	data *requestData
}

func (m *IncomingMessage) Method() Method            { return m.data.method }
func (m *IncomingMessage) MethodName() string        { return m.data.methodName }
func (m *IncomingMessage) Href() string               { return m.data.href }
func (m *IncomingMessage) Path() string               { return m.data.path }
func (m *IncomingMessage) Query() string              { return m.data.query }
func (m *IncomingMessage) HTTPVersion() Version       { return m.data.version }
func (m *IncomingMessage) Headers() *Header           { return m.data.headers }
func (m *IncomingMessage) ContentLength() int         { return m.data.contentLength }

// ReadBody copies up to len(dst) bytes of the request body into dst.
func (m *IncomingMessage) ReadBody(dst []byte) (int, error) {
	return m.data.body.Read(dst)
}

// OutgoingMessage is the handler-facing response writer (spec.md §4.12).
// It buffers through a Writer bound to the connection's socket; headers
// must be set before the first byte of body (or an explicit WriteHead) is
// written, since that is when they are serialized.
type OutgoingMessage struct {
	version Version
	output  *Writer
	headers *Header

	isHeadSent bool
	isEnded    bool
}

func newOutgoingMessage(version Version, output *Writer) *OutgoingMessage {
	return &OutgoingMessage{
		version: version,
		output:  output,
		headers: NewHeader(),
	}
}

// Headers returns the mutable response header store.
func (m *OutgoingMessage) Headers() *Header {
	return m.headers
}

// WriteHead emits the status line (for HTTP/1.x; HTTP/0.9 emits nothing)
// followed by the serialized header block and a blank line. The status
// line always carries literal "HTTP/1.0", regardless of the request's
// version, since this server never promises 1.1 semantics (spec.md
// §4.12).
func (m *OutgoingMessage) WriteHead(code, message string) error {
	if m.isHeadSent {
		return ErrAlreadySent
	}
	m.isHeadSent = true

	if m.version == Version09 {
		return nil
	}

	if err := m.output.WriteString("HTTP/1.0 " + code + " " + message + "\r\n"); err != nil {
		return ErrConnectionClosed
	}

	return m.writeHeaders()
}

// Write forwards bytes to the connection, auto-emitting "200 OK" as the
// status line first if the handler hasn't started the response yet.
func (m *OutgoingMessage) Write(bytes []byte) error {
	if !m.isHeadSent {
		if err := m.WriteHead("200", "OK"); err != nil {
			return ErrConnectionClosed
		}
	}

	if err := m.output.Write(bytes); err != nil {
		return ErrConnectionClosed
	}
	return nil
}

// WriteString is a convenience wrapper over Write.
func (m *OutgoingMessage) WriteString(s string) error {
	return m.Write([]byte(s))
}

// End is idempotent: it latches isEnded and flushes the underlying Writer.
func (m *OutgoingMessage) End() error {
	if m.isEnded {
		return nil
	}
	m.isEnded = true

	if err := m.output.Flush(); err != nil {
		return ErrConnectionClosed
	}
	return nil
}

// IsStarted reports whether WriteHead (explicit or auto-triggered by
// Write) has already run.
func (m *OutgoingMessage) IsStarted() bool {
	return m.isHeadSent
}

// IsEnded reports whether End has already run.
func (m *OutgoingMessage) IsEnded() bool {
	return m.isEnded
}

func (m *OutgoingMessage) writeHeaders() error {
	var writeErr error
	m.headers.Each(func(key string, values []string) {
		if writeErr != nil {
			return
		}
		for _, value := range values {
			if err := m.output.WriteString(key + ": " + value + "\r\n"); err != nil {
				writeErr = ErrConnectionClosed
				return
			}
		}
	})
	if writeErr != nil {
		return writeErr
	}

	if err := m.output.WriteString("\r\n"); err != nil {
		return ErrConnectionClosed
	}
	return nil
}

// Handler processes one parsed request and produces a response. It must
// not retain req or resp beyond the call (spec.md §3 "Ownership").
type Handler func(req *IncomingMessage, resp *OutgoingMessage)
