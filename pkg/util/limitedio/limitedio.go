// Package limitedio bounds reads from untrusted byte sources — in this
// module, archive entries read out of a mounted jar/zip/war — so a
// corrupt or hostile entry cannot exhaust memory during an archive
// container's GetClassBinary.
package limitedio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ascopes/jct-core/pkg/util/structerr"
)

// DefaultMaxReadSize bounds a single class file or resource read to 64 MiB,
// comfortably larger than any class file javac itself emits.
const DefaultMaxReadSize Limit = 64 * 1024 * 1024
const Infinite Limit = -1

type Limit int64

func (l Limit) String() string {
	if l <= 0 {
		return "infinite"
	}
	return strconv.FormatInt(int64(l), 10)
}
func (l Limit) Int64() int64 { return int64(l) }
func (l Limit) Int() (int, error) {
	i := int(l)
	if int64(i) != int64(l) {
		return 0, errors.New("the limit overflows int")
	}
	return i, nil
}

func (l Limit) IsLessThan(len int64) bool {
	// l <= 0 means "l is infinite" => limit is larger than len => not less than len
	if l <= 0 {
		return false
	}
	return l.Int64() < len
}

func (l Limit) IsLessThanOrEqual(len int64) bool {
	// l <= 0 means "l is infinite" => limit is larger than len => not less than len
	if l <= 0 {
		return false
	}
	return l.Int64() <= len
}

// ErrReadSizeOverflow returns a new *ReadSizeOverflowError.
func ErrReadSizeOverflow(maxReadSize Limit) *ReadSizeOverflowError {
	return &ReadSizeOverflowError{MaxReadSize: maxReadSize}
}

var _ structerr.StructError = &ReadSizeOverflowError{}

// ReadSizeOverflowError describes a read that grew larger than
// MaxReadSize. Comparable via errors.Is(err, &ReadSizeOverflowError{}).
type ReadSizeOverflowError struct {
	MaxReadSize Limit
}

func (e *ReadSizeOverflowError) Error() string {
	msg := "archive entry was larger than the maximum allowed size"
	if e.MaxReadSize != 0 {
		msg = fmt.Sprintf("%s (%d bytes)", msg, e.MaxReadSize)
	}
	return msg
}

func (e *ReadSizeOverflowError) Is(target error) bool {
	_, ok := target.(*ReadSizeOverflowError)
	return ok
}

// Reader wraps an io.Reader, returning ErrReadSizeOverflow once more than
// maxReadSize bytes have been read across all Read calls since the last
// ResetCounter. Not safe for concurrent use by multiple goroutines.
type Reader interface {
	io.Reader
	ResetCounter()
}

// NewReader builds a Reader over r. maxReadSize of 0 defaults to
// DefaultMaxReadSize; a negative maxReadSize disables the limit entirely.
func NewReader(r io.Reader, maxReadSize Limit) Reader {
	if maxReadSize == 0 {
		maxReadSize = DefaultMaxReadSize
	}

	return &ioLimitedReader{
		reader:      r,
		buf:         new(bytes.Buffer),
		maxReadSize: maxReadSize,
	}
}

type ioLimitedReader struct {
	reader      io.Reader
	buf         *bytes.Buffer
	maxReadSize Limit
	byteCounter int64
}

func (l *ioLimitedReader) Read(b []byte) (int, error) {
	maxReadSize := l.maxReadSize.Int64()
	if maxReadSize < 0 {
		return l.reader.Read(b)
	}

	if l.byteCounter > maxReadSize {
		return 0, ErrReadSizeOverflow(l.maxReadSize)
	} else if l.byteCounter == maxReadSize {
		tmp := make([]byte, 1)
		tmpn, err := l.reader.Read(tmp)
		_, _ = l.buf.Write(tmp[:tmpn])
		l.byteCounter += int64(tmpn)
		if tmpn == 0 {
			return 0, err
		}
		return 0, ErrReadSizeOverflow(l.maxReadSize)
	}

	bytesLeft := maxReadSize - l.byteCounter
	if int64(len(b)) > bytesLeft {
		b = b[:bytesLeft]
	}

	m, _ := l.buf.Read(b)
	b = b[m:]

	n, err := l.reader.Read(b)
	l.byteCounter += int64(n)
	return n, err
}

func (l *ioLimitedReader) ResetCounter() { l.byteCounter = 0 }
