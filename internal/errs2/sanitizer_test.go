package errs2_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/errs"
	"go.uber.org/zap/zaptest"

	"github.com/splitgraph/seafowl/internal/errs2"
)

func TestLoggingSanitizer_KnownClassMapsToItsCode(t *testing.T) {
	clientClass := errs.Class("client error")
	codes := errs2.CodeMap{&clientClass: http.StatusBadRequest}

	sanitizer := errs2.NewLoggingSanitizer(nil, zaptest.NewLogger(t), codes)
	code, msg := sanitizer.Sanitize("bad input", clientClass.New("missing field"))

	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, msg, "bad input")
}

func TestLoggingSanitizer_UnknownClassMapsTo500(t *testing.T) {
	unrelated := errs.Class("unrelated")
	codes := errs2.CodeMap{}

	sanitizer := errs2.NewLoggingSanitizer(nil, zaptest.NewLogger(t), codes)
	code, msg := sanitizer.Sanitize("failure", unrelated.New("boom"))

	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "failure", msg)
}

func TestIgnoreCanceled(t *testing.T) {
	require.NoError(t, errs2.IgnoreCanceled(context.Canceled))
	require.Error(t, errs2.IgnoreCanceled(errs.New("not canceled")))
}
