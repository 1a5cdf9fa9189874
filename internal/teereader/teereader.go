// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
)

// DefaultTailSize is the number of trailing bytes kept when no size is given.
const DefaultTailSize = 64 * 1024

// LineTeeReader is an io.Reader that records the last bytes and the last complete line read through it.
// It is safe for concurrent use.
type LineTeeReader struct {
	reader   io.Reader
	onLine   func(string)
	tailSize int
	tail     []byte
	partial  strings.Builder
	lastLine string
	dropped  bool
	mu       sync.RWMutex
}

// New wraps r. onLine may be nil; it is called synchronously from Read for every complete line.
func New(r io.Reader, tailSize int, onLine func(string)) *LineTeeReader {
	if tailSize <= 0 {
		tailSize = DefaultTailSize
	}

	return &LineTeeReader{
		reader:   r,
		onLine:   onLine,
		tailSize: tailSize,
	}
}

// Read implements io.Reader.
func (lt *LineTeeReader) Read(p []byte) (int, error) {
	n, err := lt.reader.Read(p)
	if n > 0 {
		lt.consume(p[:n])
	}

	if errors.Is(err, io.EOF) {
		lt.flush()
	}

	return n, err //nolint:wrapcheck
}

func (lt *LineTeeReader) consume(data []byte) {
	var lines []string

	lt.mu.Lock()

	lt.tail = append(lt.tail, data...)
	if over := len(lt.tail) - lt.tailSize; over > 0 {
		lt.tail = append(lt.tail[:0:0], lt.tail[over:]...)
		lt.dropped = true
	}

	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lt.partial.Write(data)
			break
		}

		lt.partial.Write(data[:i])
		line := strings.TrimRight(lt.partial.String(), "\r")
		lt.partial.Reset()
		lt.lastLine = line
		lines = append(lines, line)
		data = data[i+1:]
	}

	lt.mu.Unlock()

	if lt.onLine != nil {
		for _, l := range lines {
			lt.onLine(l)
		}
	}
}

// flush treats a trailing partial line as complete once the underlying reader is exhausted.
func (lt *LineTeeReader) flush() {
	lt.mu.Lock()

	if lt.partial.Len() == 0 {
		lt.mu.Unlock()
		return
	}

	line := strings.TrimRight(lt.partial.String(), "\r")
	lt.partial.Reset()
	lt.lastLine = line
	lt.mu.Unlock()

	if lt.onLine != nil {
		lt.onLine(line)
	}
}

// LastLine returns the last complete line, truncated to maxLength runes when maxLength > 3.
func (lt *LineTeeReader) LastLine(maxLength int) string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	r := []rune(lt.lastLine)
	if maxLength > 3 && len(r) > maxLength {
		return string(r[:maxLength-3]) + "..."
	}

	return lt.lastLine
}

// Tail returns a copy of the retained trailing bytes.
func (lt *LineTeeReader) Tail() []byte {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return bytes.Clone(lt.tail)
}

// Truncated reports whether bytes were discarded from the front of the tail.
func (lt *LineTeeReader) Truncated() bool {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return lt.dropped
}
