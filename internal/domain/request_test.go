package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderRequest(t *testing.T) {
	r := NewRenderRequest(map[string]interface{}{"basics": map[string]interface{}{}}, "flat")
	require.NotNil(t, r)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", r.ID.String())
	assert.Equal(t, "flat", r.Theme)
	assert.WithinDuration(t, time.Now(), r.ReceivedAt, time.Second)
}

func TestRenderRequest_Filename(t *testing.T) {
	r := NewRenderRequest(nil, "")
	r.ReceivedAt = time.UnixMilli(1700000000123)
	assert.Equal(t, "resume-1700000000123.pdf", r.Filename())
}

func TestRenderRequest_WorkDirPatternIsUnique(t *testing.T) {
	a := NewRenderRequest(nil, "")
	b := NewRenderRequest(nil, "")
	b.ReceivedAt = a.ReceivedAt
	assert.NotEqual(t, a.WorkDirPattern(), b.WorkDirPattern())
	assert.True(t, strings.HasPrefix(a.WorkDirPattern(), "resume-"))
}

func TestRenderError(t *testing.T) {
	cause := errors.New("chrome exited")
	err := &RenderError{Theme: "flat", Stderr: "boom", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "theme flat")

	var re *RenderError
	require.True(t, errors.As(error(err), &re))
	assert.Equal(t, "boom", re.Stderr)
}
