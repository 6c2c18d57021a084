package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "continue", StateContinue.String())
	assert.Equal(t, "terminate", StateTerminate.String())
	assert.Equal(t, "unknown", State(99).String())
}
