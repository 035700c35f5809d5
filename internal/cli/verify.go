package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"lukhas.dev/seal/artifact"
	"lukhas.dev/seal/keys"
	"lukhas.dev/seal/revocation"
	"lukhas.dev/seal/seal"
)

func newVerifyCmd(g *globalState) *cobra.Command {
	var (
		in      string
		pkgPath string
		format  string
		online  bool
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a sealed artifact or a detached package",
		Long: `Verify reads a sealed artifact (--in) and extracts its package, or verifies
raw content (--in) against a detached package (--package). The result is
printed as JSON; the exit code is 0 only for a valid seal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(in)
			if err != nil {
				return err
			}

			var pkg *seal.Package
			content := data
			if pkgPath != "" {
				pkg, err = loadPackage(pkgPath)
				if err != nil {
					return err
				}
			} else {
				pkg, content, err = artifact.Extract(data, artifact.Format(format))
				if err != nil {
					return err
				}
			}

			set, err := g.loadKeySet()
			if err != nil {
				return err
			}
			verifier := g.newVerifier(set, strict)
			res := verifier.VerifySeal(cmd.Context(), content, pkg, online)
			if err := printJSON(res); err != nil {
				return err
			}
			if !res.Valid {
				return errInvalid
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&in, "in", "", "sealed artifact or raw content file (default stdin)")
	fl.StringVar(&pkgPath, "package", "", "detached package JSON file")
	fl.StringVar(&format, "format", "auto", "container format: auto, png, jpeg, text")
	fl.BoolVar(&online, "online", false, "run revocation and proof-bundle checks")
	fl.BoolVar(&strict, "strict", false, "treat online-check failures as errors")
	return cmd
}

func (g *globalState) loadKeySet() (*keys.Set, error) {
	path := g.v.GetString("key-set")
	if path == "" {
		return nil, usageErr("--key-set is required for verification")
	}
	return keys.LoadSet(path)
}

func (g *globalState) newVerifier(set *keys.Set, strict bool) *seal.Verifier {
	opts := []seal.VerifierOption{}
	if strict {
		opts = append(opts, seal.WithStrictOnline())
	}
	endpoint := g.v.GetString("revocation")
	switch {
	case strings.HasPrefix(endpoint, "grpc://"):
		client, err := revocation.Dial(strings.TrimPrefix(endpoint, "grpc://"), revocation.DialOptions{})
		if err == nil {
			opts = append(opts, seal.WithRevocationChecker(client))
		} else {
			g.log.Warn().Err(err).Msg("revocation service unavailable")
		}
	case endpoint != "":
		client := revocation.NewHTTPClient(endpoint, revocation.WithLogger(g.log))
		opts = append(opts, seal.WithRevocationChecker(client), seal.WithBundleChecker(client))
	}
	return seal.NewVerifier(set, opts...)
}
