// Package secret supplies the shared signing secret to package token.
//
// Every provider exposes ProvideSecret() string and is safe for concurrent
// reads. Construction fails fast: if the source is missing or empty the
// constructor returns an error wrapping ErrSecretUnavailable, so a running
// provider never hands out a placeholder value.
//
// # Providers
//
//   - Static, Func: in-process values.
//   - File: file content read once at construction, kept verbatim unless
//     WithTrimSpace is set.
//   - WatchedFile: File plus Watch, which reloads on fsnotify events.
//   - FromEnv: <prefix>SECRET parsed with caarlos0/env.
//   - Redis, S3, Postgres: remote sources loaded at construction and
//     refreshed by Refresh, usually driven by Poll.
//   - Sealed: decrypts a pkg/seal ciphertext supplied by another provider.
//
// Reloading providers keep the secret in an atomic snapshot. A failed reload
// leaves the previous secret in place and is reported through the returned
// error or the configured logger.
//
// # Usage
//
//	file, err := secret.NewWatchedFile("/run/secrets/token", secret.WithTrimSpace())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go file.Watch(ctx)
//
//	svc, err := token.New(file)
package secret
