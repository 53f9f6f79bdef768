package protocol

// InputBuffer is received data waiting to be parsed
type InputBuffer interface {
	// Data returns the buffered bytes, contiguous
	Data() []byte
	// Available returns the number of buffered bytes
	Available() int
	// Pop drops n bytes from the front
	Pop(n int)
}

// OutputBuffer is where encoded blocks are written
type OutputBuffer interface {
	// Output appends data
	Output(data []byte)
	// CurPosition returns the write position
	CurPosition() int
	// Update overwrites one already written byte
	Update(pos int, val byte)
	// DataSince returns the bytes written after pos
	DataSince(pos int) []byte
}

// SliceInputBuffer is an InputBuffer over a fixed slice
type SliceInputBuffer struct {
	data []byte
}

// NewSliceInputBuffer wraps data
func NewSliceInputBuffer(data []byte) *SliceInputBuffer {
	return &SliceInputBuffer{data: data}
}

func (s *SliceInputBuffer) Data() []byte {
	return s.data
}

func (s *SliceInputBuffer) Available() int {
	return len(s.data)
}

func (s *SliceInputBuffer) Pop(n int) {
	if n > len(s.data) {
		n = len(s.data)
	}
	s.data = s.data[n:]
}

// ScratchOutput is an OutputBuffer over a fixed array. Writes past
// MessageMax are truncated.
type ScratchOutput struct {
	buf [MessageMax]byte
	pos int
}

// NewScratchOutput returns an empty ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

func (s *ScratchOutput) Output(data []byte) {
	s.pos += copy(s.buf[s.pos:], data)
}

func (s *ScratchOutput) CurPosition() int {
	return s.pos
}

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos < s.pos {
		s.buf[pos] = val
	}
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

// Result returns everything written since the last Reset
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// Free returns the bytes left before output is truncated
func (s *ScratchOutput) Free() int {
	return len(s.buf) - s.pos
}

// Reset empties the buffer
func (s *ScratchOutput) Reset() {
	s.pos = 0
}

// FifoBuffer is a ring buffer between the UART and the transport. It holds
// at most capacity-1 bytes.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
}

// NewFifoBuffer allocates a FifoBuffer
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Write appends as much of data as fits and returns the count written
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		next := (f.write + 1) % len(f.buf)
		if next == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = next
		written++
	}
	return written
}

// Read moves up to len(data) bytes out of the buffer
func (f *FifoBuffer) Read(data []byte) int {
	n := copy(data, f.Data())
	f.Pop(n)
	return n
}

// Available returns the number of buffered bytes
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}

// Free returns the number of bytes Write can still take
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.Available() - 1
}

// Data returns the buffered bytes as one slice. A wrapped buffer is rotated
// in place so the parser always sees contiguous input without allocating.
func (f *FifoBuffer) Data() []byte {
	if f.read > f.write {
		avail := f.Available()
		reverse(f.buf[:f.read])
		reverse(f.buf[f.read:])
		reverse(f.buf)
		f.read, f.write = 0, avail
	}
	return f.buf[f.read:f.write]
}

// Pop drops n bytes from the front
func (f *FifoBuffer) Pop(n int) {
	if avail := f.Available(); n > avail {
		n = avail
	}
	f.read = (f.read + n) % len(f.buf)
}

// IsEmpty reports whether nothing is buffered
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset empties the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
