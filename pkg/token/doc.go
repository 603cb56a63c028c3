// Package token issues and verifies compact signed tokens carrying an
// arbitrary JSON payload.
//
// Token format: header.payload.signature, where every segment is standard
// base64 with the trailing '=' padding removed:
//
//	header    = unpadded_base64(`{"alg":"HS256","typ":"JWT"}`)
//	payload   = unpadded_base64(json(value))
//	signature = unpadded_base64(sha256(header + payload + secret))
//
// The signature is a plain SHA-256 over the two encoded segments with the
// secret appended, not an RFC 2104 HMAC. Tokens issued by existing deployments
// depend on this exact construction, so it must not be swapped for HMAC.
//
// The header is never decoded during verification. Only its received bytes
// feed the signature, so the alg/typ fields carry no meaning on the verify
// side.
//
// The secret is pulled from a SecretProvider on every Issue and Verify call.
// The Service never caches it, which means a provider that swaps its value
// (see package secret) takes effect on the very next call.
//
// # Usage
//
//	import "github.com/dmitrymomot/sigtoken/pkg/token"
//
//	type Payload struct {
//	    Sub string `json:"sub"`
//	}
//
//	svc, err := token.New(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tok, err := svc.Issue(Payload{Sub: "alice"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p, err := token.Verify[Payload](svc, tok)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Callers that prefer a non-failing form use Validate, which returns a
// ValidationResult carrying the payload and an IsValid flag.
//
// # Error Handling
//
// Verify returns ErrMalformedToken for a token that does not split into
// exactly three segments, ErrInvalidSignature for a signature mismatch and
// ErrDeserialization when the payload does not decode into the target type.
// Issue returns ErrSerialization when the payload cannot be marshaled.
// Underlying causes are joined to the sentinel, so match with errors.Is.
//
// # Signature Comparison
//
// Signatures are compared with plain string equality by default. Services
// exposed to untrusted networks should opt into WithConstantTimeCompare; the
// observable contract is identical, only timing behaviour changes.
//
// # HTTP
//
// Middleware verifies a token extracted from the request (Bearer header by
// default) and stores the decoded payload in the request context, retrievable
// with PayloadFromContext.
package token
