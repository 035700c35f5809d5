package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is a simple local-first key management system ("KMS-lite").
//
// Properties:
// - Ed25519 seeds only, stored hex-encoded in 0600 files
// - one directory per named key, role subkeys under roles/
// - deterministic role subkeys derived from the root seed (DeriveRoleSeed)
//
// The store is designed to be straightforward and explicit; it is the CLI's
// signing backend, not a protocol surface.
type Store struct {
	Directory string
}

// Entry describes one named key and its derived role subkeys.
type Entry struct {
	Name  string
	Roles []string
}

// DefaultDirectory returns the per-user key directory, ~/.lukhas/keys.
func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".lukhas", "keys"), nil
}

// Open returns a Store rooted at directory, or at DefaultDirectory when empty.
func Open(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

func (s *Store) rootKeyPath(name string) string {
	return filepath.Join(s.Directory, name, "root.key")
}

func (s *Store) roleKeyPath(name, role string) string {
	return filepath.Join(s.Directory, name, "roles", role+".key")
}

// CheckName validates a key name: [A-Za-z0-9_-]+ only, so names are always
// safe as directory components.
func CheckName(name string) error {
	return checkComponent("name", name)
}

// CheckRole validates a role name with the same character set as key names.
func CheckRole(role string) error {
	return checkComponent("role", role)
}

func checkComponent(what, v string) error {
	if v == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	for _, char := range v {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in %s", char, what)
	}
	return nil
}

// ParseSeedHex decodes a 64-hex-char Ed25519 seed, tolerating a 0x prefix and
// surrounding whitespace.
func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

func (s *Store) writeSeed(path string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (s *Store) readSeed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// InitRootKey stores seed as the root key for name and returns the public key
// string and the file path written.
func (s *Store) InitRootKey(name string, seed []byte, overwrite bool) (publicKey string, path string, err error) {
	if err := CheckName(name); err != nil {
		return "", "", err
	}
	path = s.rootKeyPath(name)
	if err := s.writeSeed(path, seed, overwrite); err != nil {
		return "", "", err
	}
	return PublicKeyFromSeed(seed), path, nil
}

// DeriveRoleKey derives and stores the role subkey for name.
func (s *Store) DeriveRoleKey(name, role string, overwrite bool) (publicKey string, path string, err error) {
	if err := CheckName(name); err != nil {
		return "", "", err
	}
	if err := CheckRole(role); err != nil {
		return "", "", err
	}
	rootSeed, err := s.readSeed(s.rootKeyPath(name))
	if err != nil {
		return "", "", err
	}
	roleSeed, err := DeriveRoleSeed(rootSeed, role)
	if err != nil {
		return "", "", err
	}
	path = s.roleKeyPath(name, role)
	if err := s.writeSeed(path, roleSeed, overwrite); err != nil {
		return "", "", err
	}
	return PublicKeyFromSeed(roleSeed), path, nil
}

// ExportPublicKey returns the public key string for a stored key. An empty
// role exports the root key.
func (s *Store) ExportPublicKey(name, role string) (string, error) {
	seed, err := s.Seed(name, role)
	if err != nil {
		return "", err
	}
	return PublicKeyFromSeed(seed), nil
}

// Seed loads a stored seed. An empty role loads the root seed.
func (s *Store) Seed(name, role string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	if role == "" {
		return s.readSeed(s.rootKeyPath(name))
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}
	return s.readSeed(s.roleKeyPath(name, role))
}

// ResolveSeed loads signing material from the first available source: an
// explicit hex seed, a key file path, or a stored key name (+ optional role).
func (s *Store) ResolveSeed(seedHex, name, role, keyFile string) ([]byte, error) {
	if seedHex != "" {
		return ParseSeedHex(seedHex)
	}
	if keyFile != "" {
		return s.readSeed(keyFile)
	}
	if name != "" {
		return s.Seed(name, role)
	}
	return nil, errors.New("no signer provided")
}

// List enumerates stored keys and their role subkeys, sorted by name.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []Entry
	for _, name := range names {
		rolesDir := filepath.Join(s.Directory, name, "roles")
		roleEntries, rerr := os.ReadDir(rolesDir)
		var roles []string
		if rerr == nil {
			for _, roleEntry := range roleEntries {
				if roleEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(roleEntry.Name(), ".key") {
					roles = append(roles, strings.TrimSuffix(roleEntry.Name(), ".key"))
				}
			}
			sort.Strings(roles)
		}
		result = append(result, Entry{Name: name, Roles: roles})
	}
	return result, nil
}
