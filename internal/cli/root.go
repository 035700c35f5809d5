// Package cli implements the lukhas-seal command-line interface, a thin layer
// over the seal builder, verifier, and artifact embedders.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes: 0 success/valid, 1 failure/invalid, 2 usage.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// errInvalid marks a completed verification whose result is valid=false.
var errInvalid = errors.New("seal is not valid")

// errUsage marks bad invocations.
var errUsage = errors.New("usage error")

type globalState struct {
	v   *viper.Viper
	log zerolog.Logger
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	g := &globalState{v: viper.New(), log: zerolog.Nop()}
	root := newRootCmd(g)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errInvalid) {
			return ExitFailure
		}
		if errors.Is(err, errUsage) {
			return ExitUsage
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return ExitFailure
	}
	return ExitOK
}

func newRootCmd(g *globalState) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lukhas-seal",
		Short:         "Create, verify, and embed artifact seals",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.init(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default $HOME/.lukhas/seal.yaml)")
	pf.String("keys-dir", "", "KMS-lite key directory (default $HOME/.lukhas/keys)")
	pf.String("key-set", "", "verifier key set file (JWKS-like JSON)")
	pf.String("revocation", "", "revocation service endpoint (http(s):// or grpc://)")
	pf.String("archive-dir", "", "local package archive directory")
	pf.BoolP("verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newCreateCmd(g),
		newVerifyCmd(g),
		newExtractCmd(g),
		newCompactCmd(g),
		newKeyCmd(g),
	)
	return cmd
}

// init binds flags, loads the optional config file, and sets up logging.
// Config precedence: flags, then SEAL_* environment, then file.
func (g *globalState) init(cmd *cobra.Command) error {
	if err := g.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	g.v.SetEnvPrefix("SEAL")
	g.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	g.v.AutomaticEnv()

	if cfg := g.v.GetString("config"); cfg != "" {
		g.v.SetConfigFile(cfg)
		if err := g.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		g.v.SetConfigFile(home + "/.lukhas/seal.yaml")
		// A missing default config file is not an error.
		_ = g.v.ReadInConfig()
	}

	level := zerolog.WarnLevel
	if g.v.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	g.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return nil
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}
