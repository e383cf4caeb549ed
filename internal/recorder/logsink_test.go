package recorder

import (
	"bytes"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

var timestampPrefix = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\] `)

func TestLogSinkBriefPrefixesTimestamp(t *testing.T) {
	var brief, detail bytes.Buffer
	sink := NewLogSink(nopWriteCloser{&brief}, nopWriteCloser{&detail})

	sink.Brief("taxi started at t=%.2f", 1.0)

	require.True(t, timestampPrefix.MatchString(brief.String()), "got: %q", brief.String())
	assert.Contains(t, brief.String(), "taxi started at t=1.00")
}

func TestLogSinkDetailDoesNotAppearInBrief(t *testing.T) {
	var brief, detail bytes.Buffer
	sink := NewLogSink(nopWriteCloser{&brief}, nopWriteCloser{&detail})

	sink.Detail("verbose trace line")

	assert.Contains(t, detail.String(), "verbose trace line")
	assert.NotContains(t, brief.String(), "verbose trace line")
}

func TestLogSinkClose(t *testing.T) {
	var brief, detail bytes.Buffer
	sink := NewLogSink(nopWriteCloser{&brief}, nopWriteCloser{&detail})
	assert.NoError(t, sink.Close())
}

func TestLogSinkHandlerFansInfoToBothFiles(t *testing.T) {
	var brief, detail bytes.Buffer
	sink := NewLogSink(nopWriteCloser{&brief}, nopWriteCloser{&detail})
	logger := slog.New(sink.Handler())

	logger.Info("scenario started", "scenario", "taxi")

	assert.Contains(t, detail.String(), "scenario started")
	assert.Contains(t, brief.String(), "scenario started")
}

func TestLogSinkHandlerKeepsDebugOutOfBrief(t *testing.T) {
	var brief, detail bytes.Buffer
	sink := NewLogSink(nopWriteCloser{&brief}, nopWriteCloser{&detail})
	logger := slog.New(sink.Handler())

	logger.Debug("tick evaluated", "position", 1.0)

	assert.Contains(t, detail.String(), "tick evaluated")
	assert.NotContains(t, brief.String(), "tick evaluated")
}
