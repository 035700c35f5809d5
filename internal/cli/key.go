package cli

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"lukhas.dev/seal/keys"
)

func newKeyCmd(g *globalState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage KMS-lite signing keys",
	}
	cmd.AddCommand(
		newKeyInitCmd(g),
		newKeyDeriveCmd(g),
		newKeyListCmd(g),
		newKeyExportCmd(g),
	)
	return cmd
}

func newKeyInitCmd(g *globalState) *cobra.Command {
	var (
		name    string
		seedHex string
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a named root signing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return usageErr("--name is required")
			}
			store, err := g.openStore()
			if err != nil {
				return err
			}
			var seed []byte
			if seedHex != "" {
				seed, err = keys.ParseSeedHex(seedHex)
				if err != nil {
					return err
				}
			} else {
				seed = make([]byte, ed25519.SeedSize)
				if _, err := rand.Read(seed); err != nil {
					return err
				}
			}
			pub, path, err := store.InitRootKey(name, seed, force)
			if err != nil {
				return err
			}
			fmt.Println("public-key:", pub)
			fmt.Println("path:", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "key name")
	cmd.Flags().StringVar(&seedHex, "seed-hex", "", "64-hex-char ed25519 seed (random if omitted)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key")
	return cmd
}

func newKeyDeriveCmd(g *globalState) *cobra.Command {
	var (
		name  string
		role  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a role subkey from a root key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || role == "" {
				return usageErr("--name and --role are required")
			}
			store, err := g.openStore()
			if err != nil {
				return err
			}
			pub, path, err := store.DeriveRoleKey(name, role, force)
			if err != nil {
				return err
			}
			fmt.Println("public-key:", pub)
			fmt.Println("path:", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "root key name")
	cmd.Flags().StringVar(&role, "role", "", "role name (e.g. device, consent)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing subkey")
	return cmd
}

func newKeyListCmd(g *globalState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored keys and their roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := g.openStore()
			if err != nil {
				return err
			}
			entries, err := store.List()
			if err != nil {
				return err
			}
			for _, e := range entries {
				if len(e.Roles) == 0 {
					fmt.Println(e.Name)
					continue
				}
				fmt.Printf("%s\troles: %v\n", e.Name, e.Roles)
			}
			return nil
		},
	}
}

func newKeyExportCmd(g *globalState) *cobra.Command {
	var (
		name  string
		role  string
		asJWK bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored key's public half",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return usageErr("--name is required")
			}
			store, err := g.openStore()
			if err != nil {
				return err
			}
			if !asJWK {
				pub, err := store.ExportPublicKey(name, role)
				if err != nil {
					return err
				}
				fmt.Println(pub)
				return nil
			}
			seed, err := store.Seed(name, role)
			if err != nil {
				return err
			}
			priv := ed25519.NewKeyFromSeed(seed)
			entry := keys.EntryForPublicKey("ed25519", priv.Public().(ed25519.PublicKey))
			return printJSON(entry)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "key name")
	cmd.Flags().StringVar(&role, "role", "", "role name (root key if omitted)")
	cmd.Flags().BoolVar(&asJWK, "jwk", false, "print as a key-set JWK entry")
	return cmd
}
