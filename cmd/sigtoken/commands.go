package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/sigtoken/internal/app"
	"github.com/dmitrymomot/sigtoken/pkg/config"
	"github.com/dmitrymomot/sigtoken/pkg/seal"
	"github.com/dmitrymomot/sigtoken/pkg/token"
)

const maxInputSize = 1 << 20

// cli carries the process streams and global flags into commands.
type cli struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	envFile string
}

func (c *cli) loadConfig() (app.Config, error) {
	if c.envFile != "" {
		if err := config.LoadEnv(c.envFile); err != nil {
			return app.Config{}, err
		}
	}
	var cfg app.Config
	if err := config.Load(&cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func (c *cli) logger(cfg app.Config) *slog.Logger {
	return app.NewLogger(cfg, c.stderr)
}

// service opens the configured secret source and builds the codec.
// A non-empty override replaces the configured source with a static secret.
func (c *cli) service(ctx context.Context, override string) (*token.Service, func(), error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if override != "" {
		cfg.SecretSource = app.SourceStatic
		cfg.Secret = override
	}

	src, err := app.OpenSource(ctx, cfg, c.logger(cfg))
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.NewTokenService(cfg, src.Provider)
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return svc, src.Close, nil
}

func newFlagSet(c *cli, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("sigtoken "+name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func readInput(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxInputSize {
		return nil, fmt.Errorf("input exceeds %d bytes", maxInputSize)
	}
	return data, nil
}

func runIssue(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "issue")
	file := fs.String("f", "", "payload file (default stdin)")
	format := fs.String("format", "", "payload format: json or yaml (default from file extension, then content)")
	secretFlag := fs.String("secret", "", "use this secret instead of the configured source")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if *file != "" && *file != "-" {
		f, openErr := os.Open(*file)
		if openErr != nil {
			return openErr
		}
		data, err = readInput(f)
		f.Close()
		if *format == "" {
			*format = formatFromExt(*file)
		}
	} else {
		data, err = readInput(c.stdin)
	}
	if err != nil {
		return err
	}

	payload, err := decodePayload(data, *format)
	if err != nil {
		return err
	}

	svc, closeFn, err := c.service(ctx, *secretFlag)
	if err != nil {
		return err
	}
	defer closeFn()

	tok, err := svc.Issue(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, tok)
	return err
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	return ""
}

// decodePayload returns JSON input untouched so key order is kept; YAML
// is converted to a generic value first.
func decodePayload(data []byte, format string) (any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty payload")
	}

	switch format {
	case "json":
		if !json.Valid(data) {
			return nil, errors.New("payload is not valid JSON")
		}
		return json.RawMessage(data), nil
	case "yaml":
		return decodeYAML(data)
	case "":
		if json.Valid(data) {
			return json.RawMessage(data), nil
		}
		return decodeYAML(data)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func decodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("payload is neither JSON nor YAML: %w", err)
	}
	return jsonCompatible(v)
}

// jsonCompatible rewrites the map[any]any values yaml.v3 produces for
// mappings with non-string keys. Scalar keys are formatted as strings the
// way JSON object keys would read; composite keys are rejected.
func jsonCompatible(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			conv, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			t[k] = conv
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			switch k.(type) {
			case string, bool, int, int64, uint64, float64, nil:
			default:
				return nil, fmt.Errorf("YAML mapping key %v must be a scalar", k)
			}
			conv, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			key := fmt.Sprint(k)
			if k == nil {
				key = "null"
			}
			if _, dup := out[key]; dup {
				return nil, fmt.Errorf("YAML mapping key %q appears twice after conversion to a string", key)
			}
			out[key] = conv
		}
		return out, nil
	case []any:
		for i, item := range t {
			conv, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			t[i] = conv
		}
		return t, nil
	}
	return v, nil
}

func runVerify(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "verify")
	secretFlag := fs.String("secret", "", "use this secret instead of the configured source")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var raw string
	if fs.NArg() > 0 {
		raw = fs.Arg(0)
	} else {
		data, err := readInput(c.stdin)
		if err != nil {
			return err
		}
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return token.ErrMissingToken
	}

	svc, closeFn, err := c.service(ctx, *secretFlag)
	if err != nil {
		return err
	}
	defer closeFn()

	payload, err := token.Verify[json.RawMessage](svc, raw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, string(payload))
	return err
}

func runSeal(_ context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "seal")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.SealKey == "" {
		return errors.New("SIGTOKEN_SEAL_KEY is not set")
	}
	key, err := seal.ParseKey(cfg.SealKey)
	if err != nil {
		return err
	}

	data, err := readInput(c.stdin)
	if err != nil {
		return err
	}
	plaintext := strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
	if plaintext == "" {
		return errors.New("empty input")
	}

	sealed, err := seal.Seal(key, cfg.SealLabel, plaintext)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, sealed)
	return err
}

func runKeygen(_ context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "keygen")
	tokenSecret := fs.Bool("secret", false, "print a random token secret instead of a seal key")
	size := fs.Int("bytes", 32, "random bytes for -secret")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if *tokenSecret {
		s, err := app.GenerateSecret(*size)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.stdout, s)
		return err
	}

	key, err := seal.GenerateKey()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, seal.EncodeKey(key))
	return err
}

func runRotate(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "rotate")
	value := fs.String("value", "", "secret to store (default: 32 random bytes)")
	printValue := fs.Bool("print", false, "print the stored plaintext secret")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	secret := *value
	if secret == "" {
		if secret, err = app.GenerateSecret(32); err != nil {
			return err
		}
	}

	if err := app.Rotate(ctx, cfg, secret, c.logger(cfg)); err != nil {
		return err
	}
	if *printValue {
		_, err = fmt.Fprintln(c.stdout, secret)
	}
	return err
}

func runServe(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "serve")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	return app.Serve(ctx, cfg, c.logger(cfg))
}
