// Package errs2 provides a small sanitizer that maps internal error
// classes to HTTP status codes while logging the full, unsanitized error -
// adapted from private/errs2/sanitizer_test.go's CodeMap/LoggingSanitizer
// shape (there built for gRPC status codes; here for HTTP ones).
package errs2

import (
	"net/http"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// CodeMap associates known error classes with the HTTP status code they
// should be reported as. Any error whose class isn't present maps to
// http.StatusInternalServerError.
type CodeMap map[*errs.Class]int

// LoggingSanitizer logs the full error (optionally wrapped) and returns
// both a client-safe message and the HTTP status code to report.
type LoggingSanitizer struct {
	wrapper *errs.Class
	log     *zap.Logger
	codes   CodeMap
}

func NewLoggingSanitizer(wrapper *errs.Class, log *zap.Logger, codes CodeMap) *LoggingSanitizer {
	return &LoggingSanitizer{wrapper: wrapper, log: log, codes: codes}
}

// Sanitize logs msg+err and returns the status code registered for err's
// class (http.StatusInternalServerError if none matches) plus a message
// safe to return to the client: msg prefixed with "<class>: " for known
// classes, msg alone for everything else.
func (s *LoggingSanitizer) Sanitize(msg string, err error) (int, string) {
	logged := err
	if s.wrapper != nil {
		logged = s.wrapper.Wrap(err)
	}
	if s.log != nil {
		s.log.Error(msg, zap.Error(logged))
	}

	for class, code := range s.codes {
		if class.Has(err) {
			return code, string(*class) + ": " + msg
		}
	}
	return http.StatusInternalServerError, msg
}
