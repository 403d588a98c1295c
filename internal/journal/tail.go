package journal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrClosed is returned by Poll after Close.
var ErrClosed = errors.New("journal: tailer closed")

const (
	// maxReadPerPoll bounds the bytes consumed by one Poll; the rest is
	// picked up by the next call.
	maxReadPerPoll = 4 << 20
	readChunkSize  = 64 << 10
)

// State is the lifecycle state of a Tailer.
type State int

const (
	Unopened State = iota
	Following
	Rotated
	Closed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Following:
		return "following"
	case Rotated:
		return "rotated"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Batch is the result of one Poll.
type Batch struct {
	// Lines holds the complete lines appended since the previous poll, in
	// file order, without their line terminators.
	Lines []string
	// NoSource is set when no journal file could be located. The caller
	// should retry on its next poll.
	NoSource bool
	// Rotated is set when the tailer switched to a different file (or the
	// same path after truncation) during this poll.
	Rotated bool
}

// Tailer follows the newest journal file in a directory.
//
// A Tailer starts at end-of-file of whatever file it opens: lines written
// before it began following, or while it was between files, are never
// returned. It is not safe for concurrent use.
type Tailer struct {
	dir    string
	locate func(string) (string, error)

	state   State
	path    string
	file    *os.File
	offset  int64
	partial []byte
}

// NewTailer returns an unopened Tailer for dir. No file is touched until the
// first Poll.
func NewTailer(dir string) *Tailer {
	return &Tailer{dir: dir, locate: Locate}
}

// State returns the current lifecycle state.
func (t *Tailer) State() State { return t.state }

// Path returns the file being followed, or "" when none is open.
func (t *Tailer) Path() string { return t.path }

// Offset returns the number of bytes consumed from the current file,
// including any buffered unterminated line.
func (t *Tailer) Offset() int64 { return t.offset }

// Poll returns the complete lines appended since the previous call.
//
// When no journal can be located the batch has NoSource set and the error is
// nil. Read failures are returned without changing state or offset.
func (t *Tailer) Poll() (Batch, error) {
	switch t.state {
	case Closed:
		return Batch{}, ErrClosed
	case Unopened:
		path, err := t.locate(t.dir)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return Batch{NoSource: true}, nil
			}
			return Batch{}, err
		}
		if err := t.open(path); err != nil {
			return t.sourceErr(err)
		}
		// Freshly opened at end-of-file: nothing new yet.
		return Batch{}, nil
	}

	rotate, next, err := t.needsRotation()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			t.release()
			return Batch{NoSource: true}, nil
		}
		return Batch{}, err
	}
	if rotate {
		t.state = Rotated
		t.release()
		if err := t.open(next); err != nil {
			return t.sourceErr(err)
		}
		return Batch{Rotated: true}, nil
	}

	lines, err := t.readLines()
	if err != nil {
		return Batch{}, err
	}
	return Batch{Lines: lines}, nil
}

// Close releases the file handle. Closing an already closed Tailer is a no-op.
func (t *Tailer) Close() error {
	if t.state == Closed {
		return nil
	}
	var err error
	if t.file != nil {
		err = t.file.Close()
	}
	t.file = nil
	t.path = ""
	t.partial = nil
	t.state = Closed
	return err
}

// needsRotation re-resolves the journal and reports whether the tailer must
// move to next. It returns ErrNotFound when the directory no longer holds a
// journal file.
func (t *Tailer) needsRotation() (bool, string, error) {
	next, err := t.locate(t.dir)
	if err != nil {
		return false, "", err
	}
	if next != t.path {
		return true, next, nil
	}

	onDisk, err := os.Stat(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, "", fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return false, "", fmt.Errorf("failed to stat %s: %w", t.path, err)
	}
	open, err := t.file.Stat()
	if err != nil {
		return false, "", fmt.Errorf("failed to stat open handle for %s: %w", t.path, err)
	}

	// Replaced under the same name, or truncated below what we consumed.
	if !os.SameFile(onDisk, open) || onDisk.Size() < t.offset {
		return true, next, nil
	}
	return false, "", nil
}

// open opens path and positions the tailer at its end-of-file.
func (t *Tailer) open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat journal %s: %w", path, err)
	}

	t.file = f
	t.path = path
	t.offset = info.Size()
	t.partial = nil
	t.state = Following
	return nil
}

// release drops the current handle and returns the tailer to Unopened.
func (t *Tailer) release() {
	if t.file != nil {
		t.file.Close()
	}
	t.file = nil
	t.path = ""
	t.offset = 0
	t.partial = nil
	if t.state != Closed {
		t.state = Unopened
	}
}

// sourceErr handles a failure to open a freshly located file. A file that
// vanished between Locate and Open is treated as no source.
func (t *Tailer) sourceErr(err error) (Batch, error) {
	t.release()
	if errors.Is(err, os.ErrNotExist) {
		return Batch{NoSource: true}, nil
	}
	return Batch{}, err
}

// readLines reads up to maxReadPerPoll bytes past the offset and splits off
// the complete lines. State is committed only if every read succeeds.
func (t *Tailer) readLines() ([]string, error) {
	var data []byte
	chunk := make([]byte, readChunkSize)
	for len(data) < maxReadPerPoll {
		want := min(readChunkSize, maxReadPerPoll-len(data))
		n, err := t.file.ReadAt(chunk[:want], t.offset+int64(len(data)))
		data = append(data, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read journal %s: %w", t.path, err)
		}
	}
	if len(data) == 0 {
		return nil, nil
	}

	t.offset += int64(len(data))
	buffered := append(t.partial, data...)

	end := bytes.LastIndexByte(buffered, '\n')
	if end < 0 {
		t.partial = buffered
		return nil, nil
	}
	t.partial = append([]byte(nil), buffered[end+1:]...)

	var lines []string
	for _, raw := range bytes.Split(buffered[:end], []byte{'\n'}) {
		raw = bytes.TrimSuffix(raw, []byte{'\r'})
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		lines = append(lines, string(raw))
	}
	return lines, nil
}
