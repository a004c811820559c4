package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerReturnsConsoleLogger(t *testing.T) {
	require.NotNil(t, GetLogger())
}

func TestSetupLoggerConsoleOutput(t *testing.T) {
	config := NewDefaultConfig()
	config.Logging.Level = "debug"
	config.Logging.Output = []string{"stdout"}

	logger := SetupLogger(config)

	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())
}
