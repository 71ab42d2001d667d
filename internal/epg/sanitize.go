package epg

import "io"

const sanitizeBufSize = 64 * 1024

// sanitizingReader is a read-through filter that cleans up the byte-level
// damage common in real-world XMLTV feeds before the tokenizer sees it:
// XML-illegal control bytes become spaces and bare ampersands that do not
// begin a recognizable entity reference are rewritten to &amp;.
type sanitizingReader struct {
	inner  io.Reader
	in     []byte
	out    []byte
	pos    int
	filled int
}

func newSanitizingReader(r io.Reader) *sanitizingReader {
	return &sanitizingReader{
		inner: r,
		in:    make([]byte, sanitizeBufSize),
		out:   make([]byte, 0, sanitizeBufSize+sanitizeBufSize/2),
	}
}

func sanitizeByte(b byte) byte {
	switch {
	case b == 0x09 || b == 0x0A || b == 0x0D:
		return b
	case b <= 0x1F || b == 0x7F:
		return ' '
	default:
		return b
	}
}

func (s *sanitizingReader) refill() error {
	n, err := s.inner.Read(s.in)
	s.out = s.out[:0]
	for i := 0; i < n; i++ {
		b := sanitizeByte(s.in[i])
		if b == '&' && !validEntityStart(s.in[i:n]) {
			s.out = append(s.out, "&amp;"...)
			continue
		}
		s.out = append(s.out, b)
	}
	s.pos = 0
	s.filled = len(s.out)
	if n == 0 {
		return err
	}
	return nil
}

// validEntityStart reports whether bytes beginning with '&' look like an
// entity reference: numeric (&#...) or a short alphanumeric name closed by a
// semicolon within 10 characters.
func validEntityStart(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	if b[1] == '#' {
		return true
	}
	for i := 1; i < len(b) && i < 10; i++ {
		c := b[i]
		switch {
		case c == ';':
			return i > 1
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return false
}

func (s *sanitizingReader) Read(p []byte) (int, error) {
	if s.pos >= s.filled {
		if err := s.refill(); err != nil {
			return 0, err
		}
		if s.filled == 0 {
			return 0, io.EOF
		}
	}
	n := copy(p, s.out[s.pos:s.filled])
	s.pos += n
	return n, nil
}
