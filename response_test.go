package workbench_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/workbench"
)

func TestResponse_Variants(t *testing.T) {
	t.Run("Success Carries No Error", func(t *testing.T) {
		r := workbench.SuccessWithMetadata("payload", map[string]any{"rows": 3})
		assert.True(t, r.OK())
		assert.Equal(t, "payload", r.Content())
		assert.Equal(t, 3, r.Metadata()["rows"])
		assert.Empty(t, r.ErrMessage())
		assert.Empty(t, r.ErrKind())
	})

	t.Run("Failure Carries No Payload", func(t *testing.T) {
		r := workbench.Failure(workbench.KindNotFound, "no such file")
		assert.False(t, r.OK())
		assert.Empty(t, r.Content())
		assert.Nil(t, r.Metadata())
		assert.Equal(t, workbench.KindNotFound, r.ErrKind())
		assert.Equal(t, "no such file", r.ErrMessage())
	})

	t.Run("Failure Without Kind Defaults To Internal", func(t *testing.T) {
		r := workbench.Failure("", "something broke")
		assert.Equal(t, workbench.KindInternal, r.ErrKind())
	})
}

func TestFromError(t *testing.T) {
	t.Run("Classified Error", func(t *testing.T) {
		r := workbench.FromError(workbench.SizeLimitf("too big"))
		assert.False(t, r.OK())
		assert.Equal(t, workbench.KindSizeLimit, r.ErrKind())
	})

	t.Run("Plain Error Is Internal", func(t *testing.T) {
		r := workbench.FromError(assert.AnError)
		assert.Equal(t, workbench.KindInternal, r.ErrKind())
	})

	t.Run("Nil Error Is Success", func(t *testing.T) {
		r := workbench.FromError(nil)
		assert.True(t, r.OK())
	})
}

func TestResponse_MarshalJSON(t *testing.T) {
	t.Run("Success Shape", func(t *testing.T) {
		raw, err := json.Marshal(workbench.SuccessWithMetadata("hi", map[string]any{"n": 1}))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "success", got["status"])
		assert.Equal(t, "hi", got["content"])
		assert.NotContains(t, got, "error")
	})

	t.Run("Error Shape", func(t *testing.T) {
		raw, err := json.Marshal(workbench.Failure(workbench.KindUpstream, "502"))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "error", got["status"])
		assert.Equal(t, "502", got["error"])
		assert.Equal(t, string(workbench.KindUpstream), got["error_kind"])
		assert.NotContains(t, got, "content")
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, workbench.KindNotFound, workbench.KindOf(workbench.NotFoundf("x")))
	assert.Equal(t, workbench.KindValidation, workbench.KindOf(workbench.Validationf("x")))
	assert.Equal(t, workbench.KindSandboxViolation, workbench.KindOf(workbench.SandboxViolationf("x")))
	assert.Equal(t, workbench.KindInternal, workbench.KindOf(assert.AnError))
}
