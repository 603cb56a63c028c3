// Command sigtoken issues and verifies signed tokens and serves the HTTP API.
//
// Usage:
//
//	sigtoken [-env-file path] <command> [flags]
//
// Commands:
//
//	issue   [-f file] [-format json|yaml]  sign a payload read from a file or stdin
//	verify  [token]                        print the payload of a valid token
//	seal                                   seal a secret read from stdin
//	keygen  [-secret]                      print a new seal key or token secret
//	rotate  [-value v] [-print]            write a new secret to the configured source
//	serve                                  run the HTTP API
//
// Configuration is read from SIGTOKEN_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *cli, args []string) error
}

var commands = []command{
	{"issue", "sign a payload read from a file or stdin", runIssue},
	{"verify", "print the payload of a valid token", runVerify},
	{"seal", "seal a secret read from stdin", runSeal},
	{"keygen", "print a new seal key or token secret", runKeygen},
	{"rotate", "write a new secret to the configured source", runRotate},
	{"serve", "run the HTTP API", runServe},
}

// errUsage marks errors already reported by the flag package.
var errUsage = errors.New("usage")

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sigtoken", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env-file", "", "load variables from this .env file first")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}

		env := &cli{stdin: stdin, stdout: stdout, stderr: stderr, envFile: *envFile}
		if err := cmd.run(ctx, env, rest); err != nil {
			if errors.Is(err, errUsage) {
				return 2
			}
			fmt.Fprintf(stderr, "sigtoken %s: %v\n", name, err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stderr, "sigtoken: unknown command %q\n", name)
	fs.Usage()
	return 2
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: sigtoken [-env-file path] <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "commands:")
	for _, cmd := range commands {
		fmt.Fprintf(out, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "flags:")
	fs.PrintDefaults()
}
