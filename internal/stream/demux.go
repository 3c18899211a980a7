package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the length of a frame header.
const HeaderSize = 8

// Tag identifies the channel a frame belongs to.
type Tag byte

const (
	TagStdin  Tag = 0 // echoed input, delivered on stdout
	TagStdout Tag = 1
	TagStderr Tag = 2
)

func (t Tag) String() string {
	switch t {
	case TagStdin:
		return "stdin"
	case TagStdout:
		return "stdout"
	case TagStderr:
		return "stderr"
	default:
		return fmt.Sprintf("tag(%d)", byte(t))
	}
}

// ErrTruncated is returned when the stream ends with a partial frame pending.
var ErrTruncated = errors.New("stream ended mid-frame")

// InvalidTagError is returned for a header whose channel tag is not 0, 1 or 2.
type InvalidTagError struct {
	Tag    byte
	Offset int64 // stream offset of the offending header
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("invalid stream tag %d in frame header at offset %d", e.Tag, e.Offset)
}

// Demuxer splits a framed stream onto a stdout and a stderr sink.
// It is not safe for concurrent use.
type Demuxer struct {
	stdout io.Writer
	stderr io.Writer

	buf   []byte
	start int // first unconsumed byte in buf

	// set while a header has been consumed and its payload is pending
	inFrame bool
	tag     Tag
	size    int

	offset int64 // bytes consumed so far
	err    error // sticky
}

// NewDemuxer returns a Demuxer writing to stdout and stderr.
func NewDemuxer(stdout, stderr io.Writer) *Demuxer {
	return &Demuxer{
		stdout: stdout,
		stderr: stderr,
		buf:    make([]byte, 0, 4096),
	}
}

// Write feeds a chunk of the raw stream. It always consumes all of p
// unless decoding fails; payloads are forwarded only once complete.
func (d *Demuxer) Write(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	d.buf = append(d.buf, p...)

	if err := d.drain(); err != nil {
		d.err = err
		return 0, err
	}
	return len(p), nil
}

// drain emits every complete frame in the buffer.
func (d *Demuxer) drain() error {
	for {
		pending := d.buf[d.start:]

		if !d.inFrame {
			if len(pending) < HeaderSize {
				break
			}
			tag := Tag(pending[0])
			if tag > TagStderr {
				return &InvalidTagError{Tag: pending[0], Offset: d.offset}
			}
			d.tag = tag
			d.size = int(binary.BigEndian.Uint32(pending[4:HeaderSize]))
			d.inFrame = true
			d.consume(HeaderSize)
			continue
		}

		if len(pending) < d.size {
			break
		}
		if d.size > 0 {
			if _, err := d.sink(d.tag).Write(pending[:d.size]); err != nil {
				return fmt.Errorf("writing %s: %w", d.tag, err)
			}
		}
		d.consume(d.size)
		d.inFrame = false
		d.size = 0
	}

	// Move the unconsumed tail to the front so the buffer stays bounded
	// by the largest frame rather than the stream length.
	if d.start > 0 {
		n := copy(d.buf, d.buf[d.start:])
		d.buf = d.buf[:n]
		d.start = 0
	}
	return nil
}

func (d *Demuxer) consume(n int) {
	d.start += n
	d.offset += int64(n)
}

func (d *Demuxer) sink(tag Tag) io.Writer {
	if tag == TagStderr {
		return d.stderr
	}
	return d.stdout
}

// Close marks the end of the stream. It returns ErrTruncated if a header
// or payload is incomplete; the partial payload is discarded.
func (d *Demuxer) Close() error {
	if d.err != nil {
		return d.err
	}
	if buffered := len(d.buf) - d.start; d.inFrame || buffered > 0 {
		d.err = fmt.Errorf("%w: have %d of %d bytes at offset %d", ErrTruncated, buffered, d.pending(), d.offset)
		return d.err
	}
	return nil
}

func (d *Demuxer) pending() int {
	if d.inFrame {
		return d.size
	}
	return HeaderSize
}

// Copy decodes r until EOF, writing payloads to stdout and stderr.
func Copy(stdout, stderr io.Writer, r io.Reader) error {
	d := NewDemuxer(stdout, stderr)
	if _, err := io.Copy(d, r); err != nil {
		return err
	}
	return d.Close()
}
