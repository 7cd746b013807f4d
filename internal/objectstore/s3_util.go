package objectstore

import (
	"bytes"
	"fmt"
	"io"
)

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}

// httpRange formats offset/length as an HTTP Range header value, S3's
// expected form for GetObjectInput.Range.
func httpRange(offset, length int64) string {
	return fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
}
