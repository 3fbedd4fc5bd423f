package helpers

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hoistjs/hoist/internal/logger"
)

// Records nested phase timings. A nil timer is valid and records nothing, so
// callers can pass one around unconditionally.
type Timer struct {
	data  []timerData
	mutex sync.Mutex
	now   func() time.Time
}

type timerData struct {
	time  time.Time
	name  string
	isEnd bool
}

func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

func (t *Timer) Begin(name string) {
	if t != nil {
		t.mutex.Lock()
		defer t.mutex.Unlock()
		t.data = append(t.data, timerData{
			name: name,
			time: t.now(),
		})
	}
}

func (t *Timer) End(name string) {
	if t != nil {
		t.mutex.Lock()
		defer t.mutex.Unlock()
		t.data = append(t.data, timerData{
			name:  name,
			time:  t.now(),
			isEnd: true,
		})
	}
}

// Returns one line per completed phase, indented by nesting depth
func (t *Timer) Lines() []string {
	if t == nil {
		return nil
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	type pair struct {
		timerData
		index int
	}

	var lines []string
	var stack []pair
	indent := 0

	for _, item := range t.data {
		if !item.isEnd {
			stack = append(stack, pair{timerData: item, index: len(lines)})
			lines = append(lines, "")
			indent++
		} else {
			indent--
			last := len(stack) - 1
			top := stack[last]
			stack = stack[:last]
			if item.name != top.name {
				panic("Internal error")
			}
			lines[top.index] = fmt.Sprintf("%s%s: %dms",
				strings.Repeat("  ", indent),
				top.name,
				item.time.Sub(top.time).Milliseconds())
		}
	}

	return lines
}

func (t *Timer) Log(log logger.Log) {
	for _, line := range t.Lines() {
		log.AddVerbose(line)
	}
}
