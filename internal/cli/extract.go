package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lukhas.dev/seal/artifact"
	"lukhas.dev/seal/seal"
)

func newExtractCmd(g *globalState) *cobra.Command {
	var (
		in          string
		artifactOut string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the seal package from a sealed artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(in)
			if err != nil {
				return err
			}
			pkg, rest, err := artifact.Extract(data, artifact.Format(format))
			if err != nil {
				if errors.Is(err, artifact.ErrNoSeal) {
					return fmt.Errorf("no seal in artifact")
				}
				return err
			}
			if artifactOut != "" {
				if err := writeOutput(artifactOut, rest); err != nil {
					return err
				}
			}
			return printJSON(pkg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&in, "in", "", "sealed artifact file (default stdin)")
	fl.StringVar(&artifactOut, "artifact-out", "", "write the original artifact bytes here")
	fl.StringVar(&format, "format", "auto", "container format: auto, png, jpeg, text")
	return cmd
}

func newCompactCmd(g *globalState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact <encoded>",
		Short: "Decode a compact seal",
		Long: `Decode the base64url compact projection of a seal. A compact seal carries a
truncated signature and is a pointer requiring online verification, not a
standalone proof.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := seal.CompactDecode(args[0])
			if err != nil {
				return err
			}
			return printJSON(cs)
		},
	}
	return cmd
}
