package scopehoist

import (
	"fmt"
	"strings"

	"github.com/hoistjs/hoist/internal/logger"
)

// Errors that point at a specific place in a module's code. The CLI uses this
// to print the offending line.
type LocatedError interface {
	error
	AssetPath() string
	Loc() logger.Loc
	Text() string
}

// A require-shaped call names a specifier that none of the module's
// dependency edges carry. The syntax tree and the graph disagree, which means
// an earlier stage is broken.
type GraphDesyncError struct {
	AssetID    string
	FilePath   string
	Specifier  string
	Suggestion string
	At         logger.Loc
}

func (e *GraphDesyncError) Text() string {
	text := fmt.Sprintf("Could not find a dependency for %q in asset %q", e.Specifier, e.AssetID)
	if e.Suggestion != "" {
		text += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return text
}

func (e *GraphDesyncError) Error() string     { return e.FilePath + ": " + e.Text() }
func (e *GraphDesyncError) AssetPath() string { return e.FilePath }
func (e *GraphDesyncError) Loc() logger.Loc   { return e.At }

// A require-shaped call whose specifier argument is not a string literal
type MalformedRequireError struct {
	AssetID  string
	FilePath string
	Callee   string
	At       logger.Loc
}

func (e *MalformedRequireError) Text() string {
	return fmt.Sprintf("The second argument to %q must be a string literal", e.Callee)
}

func (e *MalformedRequireError) Error() string     { return e.FilePath + ": " + e.Text() }
func (e *MalformedRequireError) AssetPath() string { return e.FilePath }
func (e *MalformedRequireError) Loc() logger.Loc   { return e.At }

// The wrapper found a declaration it cannot hoist
type UnsupportedSyntaxError struct {
	AssetID  string
	FilePath string
	Pattern  string
	At       logger.Loc
}

func (e *UnsupportedSyntaxError) Text() string {
	return fmt.Sprintf("Cannot hoist %s out of asset %q", e.Pattern, e.AssetID)
}

func (e *UnsupportedSyntaxError) Error() string     { return e.FilePath + ": " + e.Text() }
func (e *UnsupportedSyntaxError) AssetPath() string { return e.FilePath }
func (e *UnsupportedSyntaxError) Loc() logger.Loc   { return e.At }

// The script front end rejected a module's code. The messages still carry
// their source locations.
type ParseError struct {
	AssetID  string
	FilePath string
	Msgs     []logger.Msg
}

func (e *ParseError) Error() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("failed to parse asset %q (%s)", e.AssetID, e.FilePath))
	for _, msg := range e.Msgs {
		if msg.Kind != logger.Error {
			continue
		}
		sb.WriteString(": ")
		if msg.Location != nil {
			sb.WriteString(fmt.Sprintf("%d:%d: ", msg.Location.Line, msg.Location.Column))
		}
		sb.WriteString(msg.Text)
		break
	}
	return sb.String()
}
