// Package wire implements the byte-level encoding of client requests
// and server replies described in spec.md §6: fixed-width integers in
// host byte order interleaved with null-terminated strings, read and
// written through a small buffered reader/writer pair.
//
// This mirrors the original server's PipeReader/PipeWriter
// (common/src/pipeReader.c, pipeWritter.c) field for field, so a
// client built against the original wire form and one built against
// this package can talk to each other's daemon.
package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Kind distinguishes the two request types on the wire.
type Kind int32

const (
	KindStatus      Kind = 0
	KindProcessFile Kind = 1
)

// Request is the wire form of a client submission. ArrivalTag and
// SenderTag are present on the wire for protocol compatibility only:
// they are encoded and decoded, but the relay does not carry them into
// the job.Request it hands to the router.
type Request struct {
	Kind       Kind
	ReplyPath  string
	ArrivalTag int32
	SenderTag  int32
	Priority   int32
	Input      string
	Output     string
	Ops        []string
}

// Reader decodes requests and strings from an underlying byte stream.
type Reader struct {
	br *bufio.Reader
}

// NewReader wraps r for decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 16384)}
}

// ReadString reads bytes up to and including the next NUL byte and
// returns the content without the terminator.
func (r *Reader) ReadString() (string, error) {
	s, err := r.br.ReadString(0)
	if err != nil {
		return "", err
	}
	return s[:len(s)-1], nil
}

func (r *Reader) readInt32() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r.br, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.NativeEndian.Uint32(buf[:])), nil
}

// ReadRequest decodes one Request. io.EOF (or io.ErrUnexpectedEOF) is
// returned once the peer has closed its write end with no more
// requests pending, signaling the relay to shut down admission.
func (r *Reader) ReadRequest() (*Request, error) {
	kindRaw, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	kind := Kind(kindRaw)

	req := &Request{Kind: kind}

	req.ReplyPath, err = r.ReadString()
	if err != nil {
		return nil, err
	}

	if kind == KindStatus {
		return req, nil
	}
	if kind != KindProcessFile {
		return nil, fmt.Errorf("wire: unknown request kind %d", kindRaw)
	}

	if req.ArrivalTag, err = r.readInt32(); err != nil {
		return nil, err
	}
	if req.SenderTag, err = r.readInt32(); err != nil {
		return nil, err
	}
	if req.Priority, err = r.readInt32(); err != nil {
		return nil, err
	}
	if req.Input, err = r.ReadString(); err != nil {
		return nil, err
	}
	if req.Output, err = r.ReadString(); err != nil {
		return nil, err
	}
	opCount, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	req.Ops = make([]string, opCount)
	for i := range req.Ops {
		if req.Ops[i], err = r.ReadString(); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// Writer encodes requests, replies and strings to an underlying byte
// stream, buffering until Flush is called - matching the original's
// "the PipeWritter must be flushed for the data to be sent" contract.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter wraps w for encoding.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriterSize(w, 16384)}
}

// WriteString writes s followed by a NUL terminator.
func (w *Writer) WriteString(s string) error {
	if _, err := w.bw.WriteString(s); err != nil {
		return err
	}
	return w.bw.WriteByte(0)
}

func (w *Writer) writeInt32(v int32) error {
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], uint32(v))
	_, err := w.bw.Write(buf[:])
	return err
}

// WriteRequest encodes a Request.
func (w *Writer) WriteRequest(r *Request) error {
	if err := w.writeInt32(int32(r.Kind)); err != nil {
		return err
	}
	if err := w.WriteString(r.ReplyPath); err != nil {
		return err
	}
	if r.Kind == KindStatus {
		return nil
	}

	if err := w.writeInt32(r.ArrivalTag); err != nil {
		return err
	}
	if err := w.writeInt32(r.SenderTag); err != nil {
		return err
	}
	if err := w.writeInt32(r.Priority); err != nil {
		return err
	}
	if err := w.WriteString(r.Input); err != nil {
		return err
	}
	if err := w.WriteString(r.Output); err != nil {
		return err
	}
	if err := w.writeInt32(int32(len(r.Ops))); err != nil {
		return err
	}
	for _, op := range r.Ops {
		if err := w.WriteString(op); err != nil {
			return err
		}
	}
	return nil
}

// Flush sends any buffered data downstream.
func (w *Writer) Flush() error { return w.bw.Flush() }
