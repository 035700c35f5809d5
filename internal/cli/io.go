package cli

import (
	"encoding/json"
	"io"
	"os"

	"lukhas.dev/seal/keys"
	"lukhas.dev/seal/seal"
	"lukhas.dev/seal/sign"
)

// readInput reads path, or stdin when path is "-" or empty.
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or stdout when path is "-" or empty.
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = os.Stdout.Write(out)
	return err
}

// openStore opens the KMS-lite store from config.
func (g *globalState) openStore() (*keys.Store, error) {
	return keys.Open(g.v.GetString("keys-dir"))
}

// signerFlags are the signing-material selectors shared by commands that sign.
type signerFlags struct {
	seedHex string
	signer  string
	role    string
	keyFile string
}

// provider resolves the Ed25519 signing provider from the first available
// source: explicit seed, key file, or stored key name.
func (sf *signerFlags) provider(g *globalState) (sign.Provider, error) {
	store, err := g.openStore()
	if err != nil {
		return nil, err
	}
	seed, err := store.ResolveSeed(sf.seedHex, sf.signer, sf.role, sf.keyFile)
	if err != nil {
		return nil, err
	}
	return sign.NewEd25519FromSeed(seed)
}

func loadPackage(path string) (*seal.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pkg seal.Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}
