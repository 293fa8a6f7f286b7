package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questbound/quest-api/internal/errors"
)

func TestWrapPreservesCode(t *testing.T) {
	base := errors.NotFound("run session not found")
	wrapped := errors.Wrap(base, "failed to advance run")

	assert.Equal(t, errors.CodeNotFound, errors.GetCode(wrapped))
	assert.True(t, errors.IsNotFound(wrapped))
	assert.Contains(t, wrapped.Error(), "failed to advance run")
}

func TestWrapUnclassifiedIsInternal(t *testing.T) {
	wrapped := errors.Wrap(fmt.Errorf("connection reset"), "failed to load character")
	assert.Equal(t, errors.CodeInternal, errors.GetCode(wrapped))
}

func TestWrapNil(t *testing.T) {
	var err *errors.Error = errors.Wrap(nil, "nothing happened")
	assert.Nil(t, err)
}

func TestWrapWithCode(t *testing.T) {
	err := errors.WrapWithCode(fmt.Errorf("bad json"), errors.CodeDataLoss, "corrupt run record")
	assert.True(t, errors.IsDataLoss(err))
}

func TestWithMeta(t *testing.T) {
	err := errors.FailedPrecondition("not enough keys").
		WithMeta("character_id", "char_1").
		WithMeta("keys", 0)

	require.NotNil(t, err.Meta)
	assert.Equal(t, "char_1", err.Meta["character_id"])
}

func TestGetCodeNil(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
}

func TestValidationBuilder(t *testing.T) {
	err := errors.NewValidationBuilder().
		RequiredField("PartyMembers").
		InvalidField("Duration", "must be positive").
		Build()

	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "PartyMembers")
	assert.Contains(t, err.Error(), "Duration")
}

func TestValidationBuilderEmpty(t *testing.T) {
	assert.NoError(t, errors.NewValidationBuilder().Build())
}
