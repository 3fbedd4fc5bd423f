package test

import (
	"testing"

	"github.com/hoistjs/hoist/internal/logger"
)

func SourceForTest(contents string) logger.Source {
	return logger.Source{
		KeyPath:    "<stdin>",
		PrettyPath: "<stdin>",
		Contents:   contents,
	}
}

// Collects every message in the log as the text a user would see without
// color, one message after another
func MsgsText(log logger.Log) string {
	text := ""
	for _, msg := range log.Done() {
		text += msg.String(logger.StderrOptions{IncludeSource: true}, logger.TerminalInfo{})
	}
	return text
}

func AssertEqualWithDiff(t *testing.T, observed string, expected string) {
	t.Helper()
	if observed != expected {
		t.Fatal("\n" + Diff(expected, observed))
	}
}
