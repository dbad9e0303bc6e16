package simplehttp

import (
	"io"
	"net"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/valyala/tcplisten"
	"go.uber.org/zap"

	"github.com/trequend/http-server/internal/library"
)

const (
	// defaultBindAddr and defaultBindPort are the bind defaults per
	// spec.md §4.13.
	defaultBindAddr = "127.0.0.1"
	defaultBindPort = 3000

	defaultBacklog              = 100
	defaultTimeout              = time.Second
	defaultRequestBufferLength  = 32 * 1024
	defaultResponseBufferLength = 32 * 1024
	minBufferLength             = 1024
	defaultQueueDepthPerWorker  = 8
)

// Options configures a Server (spec.md §4.13). NewServer normalizes the
// value it is given as each field's comment below describes; it does not
// substitute DefaultOptions' values for unset fields (call DefaultOptions
// and override explicitly to start from the defaults).
type Options struct {
	// Timeout is applied once, when a worker picks up the connection, as a
	// single deadline covering every read and write on it; it is not reset
	// for each read or write. Zero means no per-connection deadline is
	// applied (it does not mean "use the default" — call DefaultOptions and
	// override explicitly to start from the default).
	Timeout time.Duration

	// RequestBufferLength and ResponseBufferLength size each worker's
	// fixed receive/send buffers (spec.md §4.13). Values below
	// minBufferLength are raised to it.
	RequestBufferLength  int
	ResponseBufferLength int

	// WorkerCount is the fixed number of goroutines draining the
	// connection queue. Zero or negative means runtime.GOMAXPROCS(0).
	WorkerCount int

	// Backlog is the pending-connection queue depth passed to the
	// listener.
	Backlog int

	// Logger receives structured diagnostics for accept/parse/handler
	// failures. A nil Logger disables logging.
	Logger *zap.Logger

	// Metrics, if set, is updated as connections are queued, served, and
	// completed. A nil Metrics disables instrumentation entirely.
	Metrics *Metrics
}

// DefaultOptions returns the spec's documented defaults (spec.md §4.13):
// a 1 second timeout, 32KiB buffers, one worker per logical CPU, and a
// backlog of 100.
func DefaultOptions() Options {
	return Options{
		Timeout:              defaultTimeout,
		RequestBufferLength:  defaultRequestBufferLength,
		ResponseBufferLength: defaultResponseBufferLength,
		WorkerCount:          runtime.GOMAXPROCS(0),
		Backlog:              defaultBacklog,
	}
}

func (o Options) normalize() Options {
	if o.RequestBufferLength < minBufferLength {
		o.RequestBufferLength = minBufferLength
	}
	if o.ResponseBufferLength < minBufferLength {
		o.ResponseBufferLength = minBufferLength
	}
	if o.WorkerCount <= 0 {
		o.WorkerCount = runtime.GOMAXPROCS(0)
	}
	if o.Backlog <= 0 {
		o.Backlog = defaultBacklog
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Server accepts TCP connections and dispatches each one to a fixed pool
// of workers running Handler (spec.md §4.13, §6). Server is the top-level
// embeddable entry point: embedding applications construct one, call
// Listen or Serve, and run it on a goroutine of their choosing.
type Server struct {
	options Options
	handler Handler
	pool    *workerPool

	mu       sync.Mutex
	listener net.Listener
	stopped  bool

	initOnce library.Once
}

// NewServer constructs a Server with options normalized as described on
// Options; handler processes every successfully parsed request.
func NewServer(handler Handler, options Options) *Server {
	options = options.normalize()
	return &Server{
		options: options,
		handler: handler,
		pool: newWorkerPool(
			options.WorkerCount,
			options.WorkerCount*defaultQueueDepthPerWorker,
			options.RequestBufferLength,
			options.ResponseBufferLength,
			options.Timeout,
			options.Logger,
			options.Metrics,
		),
	}
}

// Listen binds addr (host:port; an empty addr uses 127.0.0.1:3000, spec.md
// §4.13's bind default) via tcplisten, configured with the server's
// backlog, and then blocks serving connections until Stop is called
// (grounded in server.go's acceptConn loop, generalized onto tcplisten's
// Config.NewListener rather than net.Listen).
func (s *Server) Listen(addr string) error {
	if addr == "" {
		addr = defaultBindAddr + ":" + strconv.Itoa(defaultBindPort)
	}

	cfg := tcplisten.Config{
		Backlog: s.options.Backlog,
	}
	ln, err := cfg.NewListener("tcp4", addr)
	if err != nil {
		return err
	}

	return s.Serve(ln)
}

// Serve accepts connections from ln until Stop closes it, dispatching
// each to the worker pool. Any other Accept error is logged and retried
// rather than ending the server (spec.md §4.13: "on any other accept
// error, continue"; grounded in the teacher's acceptConn, which retries
// a net.Error.Temporary() after a short sleep rather than giving up). It
// always returns after the worker pool has drained in-flight connections.
func (s *Server) Serve(ln net.Listener) error {
	if _, err := s.initOnce.Init(nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if isPermanentAcceptError(err) {
				s.pool.Stop()
				return nil
			}

			s.options.Logger.Warn("accept error, retrying", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		s.pool.Submit(conn, s.handler)
	}
}

// Stop closes the listener, causing Serve's Accept loop to unwind, and
// returns without waiting; Serve itself returns once every in-flight
// connection has finished.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true

	_ = s.initOnce.Cleanup(nil)

	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// isPermanentAcceptError reports whether err from Listener.Accept should
// end the accept loop, rather than being worth logging and retrying —
// grounded in the teacher's acceptConn, simplified to treat "listener
// closed" as the expected Stop() signal rather than an error.
func isPermanentAcceptError(err error) bool {
	if err == io.EOF {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}
