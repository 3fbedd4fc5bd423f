package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoistjs/hoist/internal/logger"
)

func TestMsgStringWithSource(t *testing.T) {
	source := logger.Source{PrettyPath: "src/a.js", Contents: "let x = 1;\nfoo(bar baz);\n"}
	msg := logger.Msg{
		Kind:     logger.Error,
		Text:     "Expected \")\" but found \"baz\"",
		Location: logger.LocationOrNil(&source, logger.Range{Loc: logger.Loc{Start: 19}, Len: 3}),
	}

	text := msg.String(logger.StderrOptions{IncludeSource: true}, logger.TerminalInfo{})
	assert.Equal(t, "src/a.js:2:8: error: Expected \")\" but found \"baz\"\nfoo(bar baz);\n        ~~~\n", text)
}

func TestMsgStringWithoutSource(t *testing.T) {
	source := logger.Source{PrettyPath: "src/a.js", Contents: "x"}
	msg := logger.Msg{Kind: logger.Warning, Text: "careful", Location: logger.LocationOrNil(&source, logger.Range{})}

	assert.Equal(t, "src/a.js: warning: careful\n", msg.String(logger.StderrOptions{}, logger.TerminalInfo{}))
	assert.Equal(t, "info: hello\n", logger.Msg{Kind: logger.Info, Text: "hello"}.String(logger.StderrOptions{}, logger.TerminalInfo{}))
}

func TestWriterLogRespectsLevel(t *testing.T) {
	var out bytes.Buffer
	log := logger.NewWriterLog(&out, logger.TerminalInfo{}, logger.StderrOptions{LogLevel: logger.LevelWarning})

	log.AddVerbose("wrapped 2 assets")
	log.AddInfo("done")
	log.AddWarning(nil, logger.Loc{}, "something odd")
	require.False(t, log.HasErrors())

	log.AddError(nil, logger.Loc{}, "broken")
	require.True(t, log.HasErrors())

	msgs := log.Done()
	assert.Len(t, msgs, 4)
	assert.Equal(t, "warning: something odd\nerror: broken\n", out.String())
}

func TestWriterLogErrorLimit(t *testing.T) {
	var out bytes.Buffer
	log := logger.NewWriterLog(&out, logger.TerminalInfo{}, logger.StderrOptions{ErrorLimit: 1, LogLevel: logger.LevelInfo})

	log.AddError(nil, logger.Loc{}, "first")
	log.AddError(nil, logger.Loc{}, "second")
	log.Done()

	assert.Equal(t, "error: first\n1 error reached (disable error limit with --error-limit=0)\n", out.String())
}

func TestDeferLogSortsByLocation(t *testing.T) {
	source := logger.Source{PrettyPath: "a.js", Contents: "one\ntwo\n"}
	log := logger.NewDeferLog()
	log.AddError(&source, logger.Loc{Start: 4}, "second line")
	log.AddError(&source, logger.Loc{Start: 0}, "first line")
	log.AddInfo("no location")

	msgs := log.Done()
	require.Len(t, msgs, 3)
	assert.Equal(t, "no location", msgs[0].Text)
	assert.Equal(t, "first line", msgs[1].Text)
	assert.Equal(t, "second line", msgs[2].Text)
}

func TestParseLogLevel(t *testing.T) {
	level, ok := logger.ParseLogLevel("verbose")
	assert.True(t, ok)
	assert.Equal(t, logger.LevelVerbose, level)

	_, ok = logger.ParseLogLevel("loud")
	assert.False(t, ok)
}
