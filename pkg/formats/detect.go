package formats

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// detectPeekSize is how much of an STL stream is inspected to tell ASCII from binary.
const detectPeekSize = 256

// IsASCIISTL reports whether prefix looks like the start of an ASCII STL file.
// Binary STL headers often begin with "solid" as well, so the facet and vertex
// keywords must also appear.
func IsASCIISTL(prefix []byte) bool {
	return bytes.Contains(prefix, []byte("solid")) &&
		bytes.Contains(prefix, []byte("facet")) &&
		bytes.Contains(prefix, []byte("vertex"))
}

// peekPrefix returns up to n leading bytes of br without consuming them.
func peekPrefix(br *bufio.Reader, n int) ([]byte, error) {
	prefix, err := br.Peek(n)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, wrapRead(err, "header")
	}
	return prefix, nil
}
