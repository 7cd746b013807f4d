package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var errExpected = errors.New("error with initializing logger")

func TestNew_Dev(t *testing.T) {
	old := zapNewDevelopment
	defer func() { zapNewDevelopment = old }()
	zapNewDevelopment = func(options ...zap.Option) (*zap.Logger, error) {
		return nil, errExpected
	}

	_, err := New("dev")
	assert.Equal(t, errExpected, err)

	_, err = New("development")
	assert.Equal(t, errExpected, err)
}

func TestNew_Prod(t *testing.T) {
	old := zapNewProduction
	defer func() { zapNewProduction = old }()
	zapNewProduction = func(options ...zap.Option) (*zap.Logger, error) {
		return nil, errExpected
	}

	_, err := New("prod")
	assert.Equal(t, errExpected, err)

	_, err = New("production")
	assert.Equal(t, errExpected, err)
}

func TestNew_Default(t *testing.T) {
	old := zapNewNop
	defer func() { zapNewNop = old }()
	zapNewNop = func() *zap.Logger {
		return nil
	}

	logger, err := New("anything-else")
	assert.Nil(t, logger)
	assert.Nil(t, err)
}
