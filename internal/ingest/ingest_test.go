package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/splitgraph/seafowl/internal/catalog"
	"github.com/splitgraph/seafowl/internal/ingest"
	"github.com/splitgraph/seafowl/internal/sync2"
)

func writeMultipart(t *testing.T, filename string, content []byte) (*multipart.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return multipart.NewReader(&buf, writer.Boundary()), writer.FormDataContentType()
}

func TestIngestPart_CSVPersistsNewTableVersion(t *testing.T) {
	cat, err := catalog.NewSQLiteContext(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cat.Close()) })

	in := ingest.New(cat)

	csvContent := []byte("fruit_id,name\n1,apple\n2,orange\n")
	reader, _ := writeMultipart(t, "fruits.csv", csvContent)

	part, err := reader.NextPart()
	require.NoError(t, err)

	require.NoError(t, in.IngestPart(context.Background(), part, "fruits"))
	require.Contains(t, cat.TableNames(), "fruits")
}

func TestIngestPart_UnsupportedSuffixReturnsTypedError(t *testing.T) {
	cat, err := catalog.NewSQLiteContext(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cat.Close()) })

	in := ingest.New(cat)

	reader, _ := writeMultipart(t, "fruits.json", []byte(`{}`))
	part, err := reader.NextPart()
	require.NoError(t, err)

	err = in.IngestPart(context.Background(), part, "fruits")
	require.Error(t, err)

	var unsupported ingest.ErrUnsupportedSuffix
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "fruits.json", unsupported.Filename)
	require.Equal(t, "File fruits.json not supported", unsupported.Error())
}

func TestIngestPart_EmptyCSVIsAnError(t *testing.T) {
	cat, err := catalog.NewSQLiteContext(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cat.Close()) })

	in := ingest.New(cat)

	reader, _ := writeMultipart(t, "fruits.csv", []byte("fruit_id,name\n"))
	part, err := reader.NextPart()
	require.NoError(t, err)

	err = in.IngestPart(context.Background(), part, "fruits")
	require.Error(t, err)
}

// TestIngestPart_ClientDisconnectRace races a client disconnecting
// mid-upload against IngestPart's in-flight read of the part, the same
// way private/server/server_test.go races a dial-then-disconnect against
// an in-flight server Run via sync2.Concurrently: one goroutine streams a
// multipart body through a pipe and then severs it instead of completing
// the upload; the other reads and ingests the part. IngestPart must
// observe the severed connection as an error rather than hanging or
// silently truncating the upload.
func TestIngestPart_ClientDisconnectRace(t *testing.T) {
	cat, err := catalog.NewSQLiteContext(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cat.Close()) })

	in := ingest.New(cat)

	pr, pw := io.Pipe()
	const boundary = "seafowltestboundary"
	writer := multipart.NewWriter(pw)
	require.NoError(t, writer.SetBoundary(boundary))
	reader := multipart.NewReader(pr, boundary)

	errDisconnected := errors.New("client disconnected mid-upload")

	errs := sync2.Concurrently(
		func() error {
			part, err := reader.NextPart()
			if err != nil {
				return err
			}
			return in.IngestPart(context.Background(), part, "fruits")
		},
		func() error {
			part, err := writer.CreateFormFile("file", "fruits.csv")
			if err != nil {
				return err
			}
			if _, err := io.WriteString(part, "fruit_id,name\n1,apple\n"); err != nil {
				return err
			}
			// Disconnect instead of writer.Close(): the multipart
			// terminator never arrives, same as a client going away
			// mid-request.
			return pw.CloseWithError(errDisconnected)
		},
	)

	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], errDisconnected)
}
