package secret_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sigtoken/pkg/secret"
)

func TestStatic(t *testing.T) {
	t.Parallel()

	t.Run("returns the same secret on every call", func(t *testing.T) {
		t.Parallel()

		p, err := secret.Static("s3cr3t")
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", p.ProvideSecret())
		assert.Equal(t, "s3cr3t", p.ProvideSecret())
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		t.Parallel()

		p, err := secret.Static("")
		require.ErrorIs(t, err, secret.ErrEmptySecret)
		assert.Nil(t, p)
	})

	t.Run("keeps whitespace", func(t *testing.T) {
		t.Parallel()

		p, err := secret.Static(" key\n")
		require.NoError(t, err)
		assert.Equal(t, " key\n", p.ProvideSecret())
	})
}

func TestFunc(t *testing.T) {
	t.Parallel()

	calls := 0
	p := secret.Func(func() string {
		calls++
		if calls == 1 {
			return "first"
		}
		return "second"
	})

	assert.Equal(t, "first", p.ProvideSecret())
	assert.Equal(t, "second", p.ProvideSecret())
	assert.Equal(t, 2, calls)
}
