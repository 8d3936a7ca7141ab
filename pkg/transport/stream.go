package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/lowc1012/rate-limited-transport/internal/log"
	"github.com/lowc1012/rate-limited-transport/pkg/protocol"
	"go.uber.org/zap"
)

// ErrClosed is returned by Send on a closed transport.
var ErrClosed = errors.New("transport is closed")

// ensure that StreamTransport satisfies the Transport interface
var _ Transport = &StreamTransport{}

type received struct {
	msg protocol.Message
	err error
}

// StreamTransport exchanges newline delimited JSON-RPC messages over a byte stream, as used over
// stdio and child process pipes.
type StreamTransport struct {
	writeMu sync.Mutex
	w       io.Writer
	r       io.Reader
	closers []io.Closer

	startOnce sync.Once
	incoming  chan received
	readDone  chan struct{}
	// wait runs on Close once reading has stopped
	wait func() error

	closeOnce sync.Once
	done      chan struct{}
	closeErr  error
}

// NewStreamTransport reads messages from r and writes them to w. Close closes both.
func NewStreamTransport(r io.ReadCloser, w io.WriteCloser) *StreamTransport {
	return newStreamTransport(r, w, w, r)
}

// NewStdioTransport talks over the process's standard input and output. Close leaves them open.
func NewStdioTransport() *StreamTransport {
	return newStreamTransport(os.Stdin, os.Stdout)
}

// NewCommandTransport starts cmd and talks to it over its standard input and output. Close closes
// its standard input, lets the reader drain its standard output and then waits for it to exit.
func NewCommandTransport(cmd *exec.Cmd) (*StreamTransport, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	t := newStreamTransport(stdout, stdin, stdin)
	t.wait = cmd.Wait
	return t, nil
}

func newStreamTransport(r io.Reader, w io.Writer, closers ...io.Closer) *StreamTransport {
	return &StreamTransport{
		w:        w,
		r:        r,
		closers:  closers,
		incoming: make(chan received),
		readDone: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Send writes msg as a single line. Concurrent sends never interleave.
func (t *StreamTransport) Send(ctx context.Context, msg protocol.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.closed() {
		return ErrClosed
	}
	_, err = t.w.Write(b)
	return err
}

// Receive returns the next decoded message. Lines that are not valid JSON-RPC are logged and
// skipped. At the end of the stream, or once closed, it returns io.EOF.
func (t *StreamTransport) Receive(ctx context.Context) (protocol.Message, error) {
	if t.closed() {
		return nil, io.EOF
	}
	t.startOnce.Do(func() { go t.readLoop() })

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, io.EOF
	case r, ok := <-t.incoming:
		if !ok || (r.err != nil && t.closed()) {
			return nil, io.EOF
		}
		return r.msg, r.err
	}
}

func (t *StreamTransport) closed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *StreamTransport) readLoop() {
	defer close(t.readDone)
	defer close(t.incoming)

	reader := bufio.NewReader(t.r)
	if t.wait != nil {
		// a child process must not block writing output nobody reads
		defer func() { _, _ = io.Copy(io.Discard, reader) }()
	}
	for {
		line, err := reader.ReadBytes('\n')
		if line = bytes.TrimSpace(line); len(line) > 0 {
			msg, decodeErr := protocol.Decode(line)
			if decodeErr != nil {
				log.Logger().Warn("Skipping malformed message", zap.Error(decodeErr))
			} else if !t.deliver(received{msg: msg}) {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.deliver(received{err: err})
			}
			return
		}
	}
}

func (t *StreamTransport) deliver(r received) bool {
	select {
	case t.incoming <- r:
		return true
	case <-t.done:
		return false
	}
}

// Close is idempotent; later calls return the result of the first.
func (t *StreamTransport) Close() error {
	t.closeOnce.Do(func() {
		t.writeMu.Lock()
		close(t.done)
		t.writeMu.Unlock()

		var errs []error
		for _, c := range t.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if t.wait != nil {
			// never started reading: nothing to wait for
			t.startOnce.Do(func() { close(t.readDone) })
			<-t.readDone
			if err := t.wait(); err != nil {
				errs = append(errs, err)
			}
		}
		t.closeErr = errors.Join(errs...)
	})
	return t.closeErr
}
