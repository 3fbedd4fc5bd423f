package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoistjs/hoist/internal/exitcode"
)

func TestGet(t *testing.T) {
	wrapped := fmt.Errorf("wrapping: %w", exitcode.Set(errors.New(""), exitcode.Usage))

	for name, c := range map[string]struct {
		err  error
		code int
	}{
		"nil":     {nil, exitcode.Success},
		"default": {errors.New(""), exitcode.Failure},
		"set":     {exitcode.Set(errors.New(""), 3), 3},
		"wrapped": {wrapped, exitcode.Usage},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, c.code, exitcode.Get(c.err))
		})
	}
}

func TestSet(t *testing.T) {
	err := errors.New("hello")
	coder := exitcode.Set(err, exitcode.Usage)
	assert.Equal(t, "hello", coder.Error())
	assert.ErrorIs(t, coder, err)
	assert.Nil(t, exitcode.Set(nil, exitcode.Usage))
}
