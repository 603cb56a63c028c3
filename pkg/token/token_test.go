package token_test

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sigtoken/pkg/token"
)

type staticSecret string

func (s staticSecret) ProvideSecret() string { return string(s) }

// mutableSecret lets a test swap the secret between calls.
type mutableSecret struct {
	v atomic.Pointer[string]
}

func newMutableSecret(s string) *mutableSecret {
	m := &mutableSecret{}
	m.Set(s)
	return m
}

func (m *mutableSecret) Set(s string)          { m.v.Store(&s) }
func (m *mutableSecret) ProvideSecret() string { return *m.v.Load() }

type countingSecret struct {
	secret string
	calls  atomic.Int64
}

func (c *countingSecret) ProvideSecret() string {
	c.calls.Add(1)
	return c.secret
}

type testPayload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type subject struct {
	Sub string `json:"sub"`
}

func newService(t *testing.T, secret string, opts ...token.Option) *token.Service {
	t.Helper()
	svc, err := token.New(staticSecret(secret), opts...)
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("with provider", func(t *testing.T) {
		svc, err := token.New(staticSecret("secret"))
		require.NoError(t, err)
		require.NotNil(t, svc)
	})

	t.Run("with nil provider", func(t *testing.T) {
		svc, err := token.New(nil)
		require.ErrorIs(t, err, token.ErrNilProvider)
		require.Nil(t, svc)
	})
}

func TestIssue_ConcreteExample(t *testing.T) {
	t.Parallel()
	svc := newService(t, "s3cr3t")

	tok, err := svc.Issue(subject{Sub: "alice"})
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	header, err := base64.StdEncoding.DecodeString(token.RestorePadding(parts[0]))
	require.NoError(t, err)
	assert.Equal(t, `{"alg":"HS256","typ":"JWT"}`, string(header))

	payload, err := base64.StdEncoding.DecodeString(token.RestorePadding(parts[1]))
	require.NoError(t, err)
	assert.Equal(t, `{"sub":"alice"}`, string(payload))

	sum := sha256.Sum256([]byte(parts[0] + parts[1] + "s3cr3t"))
	assert.Equal(t, strings.TrimRight(base64.StdEncoding.EncodeToString(sum[:]), "="), parts[2])

	assert.Equal(t,
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJhbGljZSJ9.oAia4UzWA+zeExtl0z3ll5PnWhDeZ8t4PoQwYgTv/VI",
		tok,
	)
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	svc := newService(t, "secret123")

	t.Run("struct", func(t *testing.T) {
		t.Parallel()
		want := testPayload{ID: 1, Name: "test"}
		tok, err := token.Issue(svc, want)
		require.NoError(t, err)

		got, err := token.Verify[testPayload](svc, tok)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("empty struct", func(t *testing.T) {
		t.Parallel()
		tok, err := token.Issue(svc, testPayload{})
		require.NoError(t, err)

		got, err := token.Verify[testPayload](svc, tok)
		require.NoError(t, err)
		assert.Equal(t, testPayload{}, got)
	})

	t.Run("map", func(t *testing.T) {
		t.Parallel()
		want := map[string]any{"sub": "alice", "admin": true, "n": float64(3)}
		tok, err := svc.Issue(want)
		require.NoError(t, err)

		got, err := token.Verify[map[string]any](svc, tok)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("string", func(t *testing.T) {
		t.Parallel()
		tok, err := token.Issue(svc, "héllo wörld ✓")
		require.NoError(t, err)

		got, err := token.Verify[string](svc, tok)
		require.NoError(t, err)
		assert.Equal(t, "héllo wörld ✓", got)
	})

	t.Run("integer", func(t *testing.T) {
		t.Parallel()
		tok, err := token.Issue(svc, 42)
		require.NoError(t, err)

		got, err := token.Verify[int](svc, tok)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("slice", func(t *testing.T) {
		t.Parallel()
		want := []string{"a", "b", "c"}
		tok, err := token.Issue(svc, want)
		require.NoError(t, err)

		got, err := token.Verify[[]string](svc, tok)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("nil payload", func(t *testing.T) {
		t.Parallel()
		tok, err := svc.Issue(nil)
		require.NoError(t, err)

		got, err := token.Verify[*testPayload](svc, tok)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("empty secret", func(t *testing.T) {
		t.Parallel()
		empty := newService(t, "")
		tok, err := token.Issue(empty, testPayload{ID: 7})
		require.NoError(t, err)

		got, err := token.Verify[testPayload](empty, tok)
		require.NoError(t, err)
		assert.Equal(t, 7, got.ID)
	})
}

func TestIssue_Deterministic(t *testing.T) {
	t.Parallel()
	svc := newService(t, "secret123")
	payload := testPayload{ID: 99, Name: "same"}

	first, err := svc.Issue(payload)
	require.NoError(t, err)
	second, err := svc.Issue(payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIssue_SerializationError(t *testing.T) {
	t.Parallel()
	svc := newService(t, "secret123")

	tests := []struct {
		name    string
		payload any
	}{
		{name: "channel", payload: make(chan int)},
		{name: "function", payload: func() {}},
		{name: "complex", payload: complex(1, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tok, err := svc.Issue(tt.payload)
			require.ErrorIs(t, err, token.ErrSerialization)
			assert.Empty(t, tok)
		})
	}
}

func TestVerify_MalformedToken(t *testing.T) {
	t.Parallel()
	svc := newService(t, "secret123")

	for _, tok := range []string{"", "a", "a.b", "a.b.c.d", "....", "eyJ.eyJ"} {
		t.Run(tok, func(t *testing.T) {
			t.Parallel()
			_, err := token.Verify[testPayload](svc, tok)
			require.ErrorIs(t, err, token.ErrMalformedToken)
		})
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()
	svc := newService(t, "secret123")

	tok, err := svc.Issue(testPayload{ID: 1, Name: "original"})
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	payload := []byte(parts[1])

	for i := range payload {
		tampered := make([]byte, len(payload))
		copy(tampered, payload)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}

		forged := parts[0] + "." + string(tampered) + "." + parts[2]
		_, err := token.Verify[testPayload](svc, forged)
		require.ErrorIs(t, err, token.ErrInvalidSignature, "position %d", i)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()
	svc := newService(t, "secret123")

	tok, err := svc.Issue(testPayload{ID: 1})
	require.NoError(t, err)

	_, err = token.Verify[testPayload](svc, tok+"x")
	require.ErrorIs(t, err, token.ErrInvalidSignature)

	parts := strings.Split(tok, ".")
	_, err = token.Verify[testPayload](svc, parts[0]+"."+parts[1]+".")
	require.ErrorIs(t, err, token.ErrInvalidSignature)
}

func TestVerify_SecretSensitivity(t *testing.T) {
	t.Parallel()
	secret := newMutableSecret("first-secret")
	svc, err := token.New(secret)
	require.NoError(t, err)

	tok, err := svc.Issue(testPayload{ID: 1})
	require.NoError(t, err)

	_, err = token.Verify[testPayload](svc, tok)
	require.NoError(t, err)

	secret.Set("second-secret")
	_, err = token.Verify[testPayload](svc, tok)
	require.ErrorIs(t, err, token.ErrInvalidSignature)

	secret.Set("first-secret")
	_, err = token.Verify[testPayload](svc, tok)
	require.NoError(t, err)
}

func TestService_FetchesSecretPerCall(t *testing.T) {
	t.Parallel()
	provider := &countingSecret{secret: "secret123"}
	svc, err := token.New(provider)
	require.NoError(t, err)

	tok, err := svc.Issue(testPayload{ID: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, provider.calls.Load())

	_, err = token.Verify[testPayload](svc, tok)
	require.NoError(t, err)
	assert.EqualValues(t, 2, provider.calls.Load())

	_, err = token.Verify[testPayload](svc, "a.b")
	require.ErrorIs(t, err, token.ErrMalformedToken)
	assert.EqualValues(t, 2, provider.calls.Load())
}

func TestVerify_HeaderNotInspected(t *testing.T) {
	t.Parallel()
	secret := "secret123"
	svc := newService(t, secret)

	header := strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(`{"alg":"none"}`)), "=")
	payload := strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(`{"id":5,"name":"x"}`)), "=")
	sum := sha256.Sum256([]byte(header + payload + secret))
	signature := strings.TrimRight(base64.StdEncoding.EncodeToString(sum[:]), "=")

	got, err := token.Verify[testPayload](svc, header+"."+payload+"."+signature)
	require.NoError(t, err)
	assert.Equal(t, testPayload{ID: 5, Name: "x"}, got)
}

func TestVerify_DeserializationError(t *testing.T) {
	t.Parallel()
	secret := "secret123"
	svc := newService(t, secret)

	t.Run("shape mismatch", func(t *testing.T) {
		t.Parallel()
		tok, err := svc.Issue("just a string")
		require.NoError(t, err)

		_, err = token.Verify[testPayload](svc, tok)
		require.ErrorIs(t, err, token.ErrDeserialization)
	})

	t.Run("invalid base64 with valid signature", func(t *testing.T) {
		t.Parallel()
		header := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"
		payload := "!!!!"
		sum := sha256.Sum256([]byte(header + payload + secret))
		signature := strings.TrimRight(base64.StdEncoding.EncodeToString(sum[:]), "=")

		_, err := token.Verify[testPayload](svc, header+"."+payload+"."+signature)
		require.ErrorIs(t, err, token.ErrDeserialization)
	})

	t.Run("invalid json with valid signature", func(t *testing.T) {
		t.Parallel()
		header := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"
		payload := strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(`{"id":`)), "=")
		sum := sha256.Sum256([]byte(header + payload + secret))
		signature := strings.TrimRight(base64.StdEncoding.EncodeToString(sum[:]), "=")

		_, err := token.Verify[testPayload](svc, header+"."+payload+"."+signature)
		require.ErrorIs(t, err, token.ErrDeserialization)
	})
}

func TestWithStrictDecoding(t *testing.T) {
	t.Parallel()
	lenient := newService(t, "secret123")
	strict := newService(t, "secret123", token.WithStrictDecoding())

	tok, err := lenient.Issue(map[string]any{"id": 1, "name": "a", "extra": true})
	require.NoError(t, err)

	got, err := token.Verify[testPayload](lenient, tok)
	require.NoError(t, err)
	assert.Equal(t, testPayload{ID: 1, Name: "a"}, got)

	_, err = token.Verify[testPayload](strict, tok)
	require.ErrorIs(t, err, token.ErrDeserialization)

	t.Run("trailing data rejected in both modes", func(t *testing.T) {
		t.Parallel()

		header := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"
		payload := strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(`{"id":1,"name":"a"} trailing-garbage`)), "=")
		sum := sha256.Sum256([]byte(header + payload + "secret123"))
		signature := strings.TrimRight(base64.StdEncoding.EncodeToString(sum[:]), "=")
		forged := header + "." + payload + "." + signature

		_, err := token.Verify[testPayload](lenient, forged)
		require.ErrorIs(t, err, token.ErrDeserialization)

		_, err = token.Verify[testPayload](strict, forged)
		require.ErrorIs(t, err, token.ErrDeserialization)
	})
}

func TestWithConstantTimeCompare(t *testing.T) {
	t.Parallel()
	plain := newService(t, "secret123")
	hardened := newService(t, "secret123", token.WithConstantTimeCompare())

	tok, err := plain.Issue(testPayload{ID: 3})
	require.NoError(t, err)

	hardenedTok, err := hardened.Issue(testPayload{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, tok, hardenedTok)

	got, err := token.Verify[testPayload](hardened, tok)
	require.NoError(t, err)
	assert.Equal(t, 3, got.ID)

	_, err = token.Verify[testPayload](hardened, tok+"A")
	require.ErrorIs(t, err, token.ErrInvalidSignature)
}

type upperSerializer struct{}

func (upperSerializer) Marshal(v any) ([]byte, error) {
	return []byte(strings.ToUpper(v.(string))), nil
}

func (upperSerializer) Unmarshal(data []byte, v any) error {
	*(v.(*string)) = strings.ToLower(string(data))
	return nil
}

func TestWithSerializer(t *testing.T) {
	t.Parallel()
	svc := newService(t, "secret123", token.WithSerializer(upperSerializer{}))

	tok, err := svc.Issue("hello")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	raw, err := base64.StdEncoding.DecodeString(token.RestorePadding(parts[1]))
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(raw))

	got, err := token.Verify[string](svc, tok)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	svc := newService(t, "secret123")

	tok, err := svc.Issue(testPayload{ID: 8, Name: "valid"})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		res := token.Validate[testPayload](svc, tok)
		assert.True(t, res.IsValid)
		assert.NoError(t, res.Err)
		assert.Equal(t, testPayload{ID: 8, Name: "valid"}, res.Result)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		res := token.Validate[testPayload](svc, "nope")
		assert.False(t, res.IsValid)
		assert.ErrorIs(t, res.Err, token.ErrMalformedToken)
		assert.Equal(t, testPayload{}, res.Result)
	})

	t.Run("bad signature", func(t *testing.T) {
		t.Parallel()
		res := token.Validate[testPayload](svc, tok+"A")
		assert.False(t, res.IsValid)
		assert.ErrorIs(t, res.Err, token.ErrInvalidSignature)
	})
}

func TestService_Concurrent(t *testing.T) {
	t.Parallel()
	svc := newService(t, "secret123")

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			tok, err := token.Issue(svc, testPayload{ID: id})
			if !assert.NoError(t, err) {
				return
			}
			got, err := token.Verify[testPayload](svc, tok)
			if assert.NoError(t, err) {
				assert.Equal(t, id, got.ID)
			}
		}(i)
	}
	wg.Wait()
}
