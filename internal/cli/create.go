package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lukhas.dev/seal/artifact"
	"lukhas.dev/seal/policy"
	"lukhas.dev/seal/seal"
	"lukhas.dev/seal/storage/localfs"
)

func newCreateCmd(g *globalState) *cobra.Command {
	var (
		in, out       string
		mediaType     string
		issuer        string
		modelID       string
		fingerprint   string
		policyRoot    string
		policyOverlay string
		jurisdiction  string
		proofBundle   string
		prev          string
		ttlDays       int
		doEmbed       bool
		format        string
		skipPolicy    bool
		archive       bool
		sf            signerFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a signed seal package for an artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			if issuer == "" {
				return usageErr("--issuer is required")
			}
			content, err := readInput(in)
			if err != nil {
				return err
			}
			provider, err := sf.provider(g)
			if err != nil {
				return err
			}

			f := artifact.Format(format)
			if mediaType == "" {
				mediaType = artifact.MediaType(resolveFormat(f, content))
			}

			opts := []seal.BuilderOption{}
			if fingerprint == "" && policyRoot != "" {
				popts := []policy.Option{}
				if skipPolicy {
					popts = append(popts, policy.WithSkipUnreadable())
				}
				opts = append(opts, seal.WithFingerprinter(policy.New(popts...)))
			}
			builder, err := seal.NewBuilder(provider, opts...)
			if err != nil {
				return err
			}

			pkg, err := builder.CreateSeal(seal.CreateRequest{
				Content:           content,
				MediaType:         mediaType,
				Issuer:            issuer,
				ModelID:           modelID,
				PolicyFingerprint: fingerprint,
				PolicyRoot:        policyRoot,
				PolicyOverlay:     policyOverlay,
				Jurisdiction:      jurisdiction,
				ProofBundle:       proofBundle,
				TTLDays:           ttlDays,
				Prev:              prev,
			})
			if err != nil {
				return err
			}
			g.log.Info().Str("key_id", pkg.Signature.KeyID).Str("content_hash", pkg.Seal.ContentHash).Msg("seal created")

			if archive {
				if err := archivePackage(g, pkg); err != nil {
					return err
				}
			}

			if doEmbed {
				sealed, err := artifact.Embed(content, pkg, f)
				if err != nil {
					return err
				}
				if err := writeOutput(out, sealed); err != nil {
					return err
				}
				fmt.Fprintln(os.Stderr, "compact:", pkg.Compact)
				return nil
			}

			raw, err := json.MarshalIndent(pkg, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(out, append(raw, '\n'))
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&in, "in", "", "artifact file (default stdin)")
	fl.StringVar(&out, "out", "", "output file (default stdout)")
	fl.StringVar(&mediaType, "media-type", "", "MIME type of the content (default by format)")
	fl.StringVar(&issuer, "issuer", "", "issuer identity, lukhas://org/<tenant>")
	fl.StringVar(&modelID, "model-id", "", "producer/model identifier")
	fl.StringVar(&fingerprint, "policy-fingerprint", "", "precomputed policy fingerprint (<algo>:<hex>)")
	fl.StringVar(&policyRoot, "policy-root", "", "policy pack directory to fingerprint")
	fl.StringVar(&policyOverlay, "policy-overlay", "", "policy overlay directory")
	fl.StringVar(&jurisdiction, "jurisdiction", "", "region code")
	fl.StringVar(&proofBundle, "proof-bundle", "", "proof bundle URL")
	fl.StringVar(&prev, "prev", "", "content hash of a prior seal (provenance hint)")
	fl.IntVar(&ttlDays, "ttl-days", 365, "seal validity in days")
	fl.BoolVar(&doEmbed, "embed", false, "embed the package into the artifact instead of printing it")
	fl.StringVar(&format, "format", "auto", "container format: auto, png, jpeg, text")
	fl.BoolVar(&skipPolicy, "policy-skip-unreadable", false, "silently skip unreadable policy files")
	fl.BoolVar(&archive, "archive", false, "store the package in the local archive")
	fl.StringVar(&sf.seedHex, "seed-hex", "", "64-hex-char ed25519 seed")
	fl.StringVar(&sf.signer, "signer", "", "stored key name")
	fl.StringVar(&sf.role, "signer-role", "", "stored key role")
	fl.StringVar(&sf.keyFile, "key-file", "", "seed file path")
	return cmd
}

func resolveFormat(f artifact.Format, content []byte) artifact.Format {
	if f == artifact.FormatAuto || f == "" {
		return artifact.Detect(content)
	}
	return f
}

func archivePackage(g *globalState, pkg *seal.Package) error {
	dir := g.v.GetString("archive-dir")
	if dir == "" {
		return usageErr("--archive requires --archive-dir (or SEAL_ARCHIVE_DIR)")
	}
	arch, err := localfs.New(dir)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(pkg)
	if err != nil {
		return err
	}
	id, err := arch.Put(raw)
	if err != nil {
		return err
	}
	g.log.Info().Str("cid", id.String()).Msg("package archived")
	fmt.Fprintln(os.Stderr, "archived:", id.String())
	return nil
}
