package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageError_UnwrapsToCause(t *testing.T) {
	cause := &UpstreamError{Op: "GET /user", Err: stderrors.New("502 Bad Gateway")}
	err := fmt.Errorf("running sync: %w", &StageError{Stage: StageResolveUsername, ReposCommitted: true, Err: cause})

	assert.True(t, IsUpstream(err))
	assert.False(t, IsValidation(err))

	var stageErr *StageError
	assert.True(t, stderrors.As(err, &stageErr))
	assert.Equal(t, StageResolveUsername, stageErr.Stage)
	assert.True(t, stageErr.ReposCommitted)
	assert.Contains(t, err.Error(), "resolve_username")
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "from: must not be after to", (&ValidationError{Field: "from", Message: "must not be after to"}).Error())
	assert.Equal(t, "bad range", (&ValidationError{Message: "bad range"}).Error())
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", &ValidationError{Message: "x"})))
}
