package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_Success(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"--log-level", "error", "eval", "stairs", "0.5", "2"}, stdout, stderr)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "0.5\n", stdout.String())
}

func TestRun_Failure(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"--log-level", "error", "eval", "wobble", "0.5"}, stdout, stderr)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: ")
}
