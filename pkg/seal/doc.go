// Package seal encrypts small secrets at rest, such as the token signing
// secret stored in a file, Redis key, S3 object or database row.
//
// A 32-byte master key and a label are combined with HKDF-SHA-256 into a
// per-label AES-256 key. The label acts as the HKDF salt, so the same master
// key yields unrelated keys for different labels. Plaintext is sealed with
// AES-GCM; the random nonce is prepended to the ciphertext and the result is
// standard base64.
//
// # Usage
//
//	import "github.com/dmitrymomot/sigtoken/pkg/seal"
//
//	key, _ := seal.GenerateKey()
//
//	sealed, err := seal.Seal(key, "token-secret", "s3cr3t")
//	if err != nil {
//	    // handle error
//	}
//
//	plain, err := seal.Open(key, "token-secret", sealed)
//
// # Error Handling
//
// Errors wrap one of the package sentinels (ErrInvalidKey, ErrSealFailed,
// ErrOpenFailed, ErrInvalidCiphertext, ErrKeyDerivationFailed). Use errors.Is.
package seal
