package simplehttp

// Writer is a fixed-capacity send buffer: bytes accumulate until the
// buffer fills, at which point Write flushes to the transport and
// continues (spec.md §4.3). A single Write call may therefore trigger
// several flushes.
//
// Writer is not safe for concurrent use.
type Writer struct {
	transport Transport

	buffer     []byte
	savedBytes int
}

// NewWriter allocates a Writer of the given capacity over transport.
func NewWriter(transport Transport, capacity int) *Writer {
	return NewWriterWithBuffer(transport, make([]byte, capacity))
}

// NewWriterWithBuffer constructs a Writer over transport using buffer as
// its fixed send buffer instead of allocating a new one, for the same
// per-worker reuse reason as NewReaderWithBuffer.
func NewWriterWithBuffer(transport Transport, buffer []byte) *Writer {
	return &Writer{
		transport: transport,
		buffer:    buffer,
	}
}

// Write copies bytes into the send buffer, flushing whenever it fills.
// Any transport error closes the socket and surfaces as
// ErrConnectionClosed.
func (w *Writer) Write(bytes []byte) error {
	for len(bytes) != 0 {
		bytesToCopy := min(len(w.buffer)-w.savedBytes, len(bytes))
		copy(w.buffer[w.savedBytes:], bytes[:bytesToCopy])

		w.savedBytes += bytesToCopy
		bytes = bytes[bytesToCopy:]

		if w.savedBytes == len(w.buffer) {
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}

	return nil
}

// WriteString is a convenience wrapper avoiding an explicit []byte(s) at
// call sites.
func (w *Writer) WriteString(s string) error {
	return w.Write([]byte(s))
}

// Flush sends [0, savedBytes) to the transport and resets savedBytes to 0.
// It is a no-op when the buffer is empty.
func (w *Writer) Flush() error {
	if w.savedBytes == 0 {
		return nil
	}

	if err := w.transport.Send(w.buffer[:w.savedBytes]); err != nil {
		_ = w.transport.Close()
		return ErrConnectionClosed
	}

	w.savedBytes = 0
	return nil
}
