package simplehttp

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// connectionState names the phases of Connection.ProcessRequest (spec.md
// §3 "Connection state machine"). A Connection only ever processes one
// request; there is no transition back to stateRequestLine.
type connectionState int

const (
	stateInitial connectionState = iota
	stateRequestLine
	stateHeaders
	stateParsed
	stateClosed
)

// maxContentLengthDigits bounds the decimal digit count a Content-Length
// header may carry before a server on a 64-bit machine word would
// overflow parsing it — floor(log10(MaxInt64))+1, per spec.md §9's
// recommended conservative test (the C++ origin instead bounded by
// sizeof(size_t) bytes, which is too permissive).
const maxContentLengthDigits = len("9223372036854775807")

// Connection drives one request to completion over a single TCP
// connection: parsing, body framing, handler invocation, response
// emission, and socket close (spec.md §4.10).
//
// A Connection is used for exactly one request and then discarded; it is
// not safe for concurrent use.
type Connection struct {
	transport Transport
	reader    *Reader
	writer    *Writer
	logger    *zap.Logger

	state connectionState
	data  requestData
}

// NewConnection constructs a Connection driving reader/writer over
// transport. reader and writer are typically borrowed, per-worker buffers
// (spec.md §4.13).
func NewConnection(transport Transport, reader *Reader, writer *Writer, logger *zap.Logger) *Connection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connection{transport: transport, reader: reader, writer: writer, logger: logger}
}

// ProcessRequest parses exactly one request, invokes handler, drains the
// body, and always closes the transport before returning (spec.md
// §4.10). The returned error is non-nil whenever the connection ended
// abnormally (bad request, transport failure, handler fault); callers
// generally only need to log it.
func (c *Connection) ProcessRequest(handler Handler) error {
	if c.state != stateInitial {
		return errAlreadyProcessed
	}

	c.state = stateRequestLine
	for c.state != stateParsed {
		result, err := c.reader.Read()
		if err != nil {
			_ = c.transport.Close()
			return err
		}

		if parseErr := c.advanceParse(result); parseErr != nil {
			c.sendBadRequest()
			return parseErr
		}
	}

	body, contentLength, err := c.selectBody()
	if err != nil {
		c.sendBadRequest()
		return err
	}
	c.data.body = body
	c.data.contentLength = contentLength

	if handlerErr := c.invokeHandler(handler); handlerErr != nil {
		_ = c.transport.Close()
		return handlerErr
	}

	if consumeErr := c.data.body.Consume(); consumeErr != nil {
		_ = c.transport.Close()
		return consumeErr
	}

	_ = c.transport.Close()
	return nil
}

func (c *Connection) advanceParse(result ReadResult) error {
	switch c.state {
	case stateRequestLine:
		return c.takeRequestLine(result)
	case stateHeaders:
		return c.takeHeader(result)
	default:
		return ErrBadRequest
	}
}

// findCRLF returns the index of the first CRLF in buffer, or -1 if none
// is present yet. spec.md §9 flags the C++ origin's off-by-one ("called
// with the lower bound buffer_length - 1, which underflows if
// buffer_length == 0"); this treats an empty or 1-byte buffer as simply
// "no CRLF found yet" rather than reproducing that underflow.
func findCRLF(buffer []byte) int {
	if len(buffer) < 2 {
		return -1
	}
	for i := 0; i < len(buffer)-1; i++ {
		if buffer[i] == '\r' && buffer[i+1] == '\n' {
			return i
		}
	}
	return -1
}

func (c *Connection) takeRequestLine(result ReadResult) error {
	crlf := findCRLF(result.Buffer)
	if crlf == -1 {
		if result.IsCompleted || c.reader.IsFull() {
			return ErrBadRequest
		}
		c.reader.Advance(0, len(result.Buffer))
		return nil
	}

	line := result.Buffer[:crlf]
	parsed, err := parseRequestLine(line)
	if err != nil {
		return ErrBadRequest
	}

	if err := c.processRequestLine(parsed); err != nil {
		return err
	}

	c.reader.AdvanceConsumed(len(line) + 2)
	return nil
}

func (c *Connection) processRequestLine(line requestLine) error {
	if line.version != nil {
		// Set before validating the digit-length rule below, so that a
		// too-many-digits version (e.g. "HTTP/12.0") is still reported
		// with a "400 Bad Request" status line: the request was clearly
		// attempting HTTP/1.x framing, not HTTP/0.9.
		c.data.version = Version10

		major, minor := line.version.major, line.version.minor
		if len(major) > 1 || len(minor) > 1 {
			return ErrBadRequest
		}

		switch {
		case string(major) == "1" && string(minor) == "0":
			c.data.version = Version10
		case string(major) == "1" && string(minor) == "1":
			c.data.version = Version11
		default:
			return ErrBadRequest
		}
		c.state = stateHeaders
	} else {
		c.data.version = Version09
		c.state = stateParsed
	}

	if c.data.version == Version09 {
		if !strings.EqualFold(string(line.method), "GET") {
			return ErrBadRequest
		}
		c.data.method = MethodGet
		c.data.methodName = "GET"
	} else {
		switch {
		case strings.EqualFold(string(line.method), "GET"):
			c.data.method = MethodGet
			c.data.methodName = "GET"
		case strings.EqualFold(string(line.method), "HEAD"):
			c.data.method = MethodHead
			c.data.methodName = "HEAD"
		case strings.EqualFold(string(line.method), "POST"):
			c.data.method = MethodPost
			c.data.methodName = "POST"
		default:
			c.data.method = MethodCustom
			c.data.methodName = strings.ToUpper(string(line.method))
		}
	}

	c.data.href = string(line.uri)

	parts, ok := parseURI(line.uri)
	if !ok {
		return ErrBadRequest
	}

	if parts.hasPath {
		c.data.path = string(parts.path)
	} else {
		c.data.path = "/"
	}

	if parts.hasQuery {
		c.data.query = string(parts.query)
	} else {
		c.data.query = ""
	}

	return nil
}

func (c *Connection) takeHeader(result ReadResult) error {
	crlf := findCRLF(result.Buffer)
	if crlf == -1 {
		if result.IsCompleted || c.reader.IsFull() {
			return ErrBadRequest
		}
		c.reader.Advance(0, len(result.Buffer))
		return nil
	}

	if crlf == 0 {
		c.reader.AdvanceConsumed(2)
		c.state = stateParsed
		return nil
	}

	line := result.Buffer[:crlf]
	header, err := parseRequestHeader(line)
	if err != nil {
		return ErrBadRequest
	}

	if c.data.headers == nil {
		c.data.headers = NewHeader()
	}
	c.data.headers.Add(string(header.name), string(header.value))

	c.reader.AdvanceConsumed(len(line) + 2)
	return nil
}

// selectBody implements body framing (spec.md §4.11).
func (c *Connection) selectBody() (MessageBody, int, error) {
	if c.data.version == Version09 {
		return ZeroBody{}, 0, nil
	}

	if c.data.headers == nil {
		c.data.headers = NewHeader()
	}

	values, ok := c.data.headers.Get("Content-Length")
	if !ok {
		return ZeroBody{}, 0, nil
	}

	if len(values) > 1 {
		return nil, 0, ErrBadContentLength
	}

	value := values[0]
	if len(value) > maxContentLengthDigits {
		return nil, 0, ErrBadContentLength
	}

	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return nil, 0, ErrBadContentLength
		}
	}

	contentLength, err := strconv.Atoi(value)
	if err != nil || contentLength < 0 {
		return nil, 0, ErrBadContentLength
	}

	if contentLength == 0 {
		return ZeroBody{}, 0, nil
	}

	return newContentLengthBody(c.reader, contentLength), contentLength, nil
}

// invokeHandler calls handler, translating a panic or a handler that
// never started a response into a synthesized 500 (spec.md §4.10 point
// 4). A handler that started but never called End leaves the socket
// closed mid-stream, which is also reported as a handler fault.
func (c *Connection) invokeHandler(handler Handler) (err error) {
	if c.data.headers == nil {
		c.data.headers = NewHeader()
	}

	req := &IncomingMessage{data: &c.data}
	resp := newOutgoingMessage(c.data.version, c.writer)

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panicked", zap.Any("recover", r))
			c.sendInternalError(resp)
			err = ErrHandlerFailed
		}
	}()

	handler(req, resp)

	if !resp.IsStarted() {
		c.sendInternalError(resp)
		return ErrHandlerFailed
	}

	if !resp.IsEnded() {
		return ErrHandlerFailed
	}

	return nil
}

func (c *Connection) sendBadRequest() {
	if c.data.version != VersionNone && c.data.version != Version09 {
		_ = c.writer.WriteString("HTTP/1.0 400 Bad Request\r\n\r\n")
		_ = c.writer.Flush()
	}
	_ = c.transport.Close()
}

func (c *Connection) sendInternalError(resp *OutgoingMessage) {
	if resp.IsStarted() {
		return
	}
	if c.data.version != VersionNone && c.data.version != Version09 {
		_ = c.writer.WriteString("HTTP/1.0 500 Internal Server Error\r\n\r\n")
		_ = c.writer.Flush()
	}
}

var errAlreadyProcessed = ErrBadRequest
