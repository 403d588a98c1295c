package journal

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// ScanBackward calls fn with each non-blank line of the file at path, last
// line first, until fn returns false or the start of the file is reached.
// An unterminated final line is included.
func ScanBackward(path string, fn func(line string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	pos := info.Size()
	var carry []byte // start of a line whose beginning lies in an earlier block
	block := make([]byte, readChunkSize)

	for pos > 0 {
		n := int64(len(block))
		if pos < n {
			n = pos
		}
		pos -= n
		if _, err := f.ReadAt(block[:n], pos); err != nil && err != io.EOF {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		buf := append(append([]byte(nil), block[:n]...), carry...)
		for {
			i := bytes.LastIndexByte(buf, '\n')
			if i < 0 {
				break
			}
			if !emit(buf[i+1:], fn) {
				return nil
			}
			buf = buf[:i]
		}
		carry = buf
	}

	emit(carry, fn)
	return nil
}

// emit passes a non-blank line to fn and reports whether scanning continues.
func emit(raw []byte, fn func(string) bool) bool {
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	return fn(string(raw))
}
