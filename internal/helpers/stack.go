package helpers

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// A panic that was caught inside a worker and turned back into an error so
// the caller can report it through the normal error path.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
}

// Call this from a deferred function with the result of "recover()"
func PanicToError(recovered any) error {
	if recovered == nil {
		return nil
	}
	return &PanicError{Value: recovered, Stack: PrettyPrintedStack()}
}

func PrettyPrintedStack() string {
	return prettyPrintStack(string(debug.Stack()))
}

func prettyPrintStack(stack string) string {
	lines := strings.Split(strings.TrimSpace(stack), "\n")

	// Strip the first "goroutine" line
	if len(lines) > 0 {
		if first := lines[0]; strings.HasPrefix(first, "goroutine ") && strings.HasSuffix(first, ":") {
			lines = lines[1:]
		}
	}

	sb := strings.Builder{}

	for _, line := range lines {
		// Indented lines are source locations
		if location, ok := strings.CutPrefix(line, "\t"); ok {
			location = strings.TrimPrefix(location, "github.com/hoistjs/hoist/")
			if offset := strings.LastIndex(location, " +0x"); offset != -1 {
				location = location[:offset]
			}
			sb.WriteString(" (")
			sb.WriteString(location)
			sb.WriteString(")")
			continue
		}

		// Other lines are function calls
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		if strings.HasSuffix(line, ")") {
			if paren := strings.LastIndexByte(line, '('); paren != -1 {
				line = line[:paren]
			}
		}
		if slash := strings.LastIndexByte(line, '/'); slash != -1 {
			line = line[slash+1:]
		}
		sb.WriteString(line)
	}

	return sb.String()
}
