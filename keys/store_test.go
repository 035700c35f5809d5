package keys

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func testSeedBytes() []byte {
	return bytes.Repeat([]byte{0x2a}, 32)
}

func TestInitRootKey(t *testing.T) {
	s := testStore(t)
	pub, path, err := s.InitRootKey("acme", testSeedBytes(), false)
	if err != nil {
		t.Fatalf("InitRootKey: %v", err)
	}
	if !strings.HasPrefix(pub, "ed25519:") {
		t.Fatalf("public key = %q", pub)
	}
	if filepath.Base(path) != "root.key" {
		t.Fatalf("path = %q", path)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("seed file mode = %v, want 0600", info.Mode().Perm())
		}
	}

	// A second init without overwrite must refuse to clobber the seed.
	if _, _, err := s.InitRootKey("acme", testSeedBytes(), false); err == nil {
		t.Fatalf("expected refusal to overwrite existing root key")
	}
	if _, _, err := s.InitRootKey("acme", testSeedBytes(), true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestInitRootKey_RejectsBadName(t *testing.T) {
	s := testStore(t)
	for _, name := range []string{"", "a/b", "../escape", "sp ace"} {
		if _, _, err := s.InitRootKey(name, testSeedBytes(), false); err == nil {
			t.Fatalf("name %q accepted", name)
		}
	}
}

func TestDeriveRoleKey(t *testing.T) {
	s := testStore(t)
	if _, _, err := s.InitRootKey("acme", testSeedBytes(), false); err != nil {
		t.Fatalf("InitRootKey: %v", err)
	}
	pub1, _, err := s.DeriveRoleKey("acme", "issuer", false)
	if err != nil {
		t.Fatalf("DeriveRoleKey: %v", err)
	}
	// Deterministic: re-deriving with overwrite yields the same public key.
	pub2, _, err := s.DeriveRoleKey("acme", "issuer", true)
	if err != nil {
		t.Fatalf("DeriveRoleKey: %v", err)
	}
	if pub1 != pub2 {
		t.Fatalf("role derivation not deterministic: %q vs %q", pub1, pub2)
	}

	rootPub, err := s.ExportPublicKey("acme", "")
	if err != nil {
		t.Fatalf("ExportPublicKey: %v", err)
	}
	if pub1 == rootPub {
		t.Fatalf("role key equals root key")
	}
}

func TestDeriveRoleKey_MissingRoot(t *testing.T) {
	s := testStore(t)
	if _, _, err := s.DeriveRoleKey("ghost", "issuer", false); err == nil {
		t.Fatalf("expected error for missing root key")
	}
}

func TestResolveSeed(t *testing.T) {
	s := testStore(t)
	seed := testSeedBytes()
	seedHex := "2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a"

	got, err := s.ResolveSeed(seedHex, "", "", "")
	if err != nil {
		t.Fatalf("ResolveSeed hex: %v", err)
	}
	if !bytes.Equal(got, seed) {
		t.Fatalf("hex seed mangled")
	}

	if _, _, err := s.InitRootKey("acme", seed, false); err != nil {
		t.Fatalf("InitRootKey: %v", err)
	}
	got, err = s.ResolveSeed("", "acme", "", "")
	if err != nil {
		t.Fatalf("ResolveSeed name: %v", err)
	}
	if !bytes.Equal(got, seed) {
		t.Fatalf("stored seed mangled")
	}

	keyFile := filepath.Join(t.TempDir(), "loose.key")
	if err := os.WriteFile(keyFile, []byte(seedHex+"\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	got, err = s.ResolveSeed("", "", "", keyFile)
	if err != nil {
		t.Fatalf("ResolveSeed file: %v", err)
	}
	if !bytes.Equal(got, seed) {
		t.Fatalf("file seed mangled")
	}

	if _, err := s.ResolveSeed("", "", "", ""); err == nil {
		t.Fatalf("expected error when no signer source given")
	}
}

func TestParseSeedHex(t *testing.T) {
	want := testSeedBytes()
	hex64 := strings.Repeat("2a", 32)
	for _, in := range []string{hex64, "0x" + hex64, "  " + hex64 + "\n"} {
		got, err := ParseSeedHex(in)
		if err != nil {
			t.Fatalf("ParseSeedHex(%q): %v", in, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("ParseSeedHex(%q) mangled seed", in)
		}
	}
	for _, in := range []string{"", "2a", "zz" + hex64[2:], hex64 + "2a"} {
		if _, err := ParseSeedHex(in); err == nil {
			t.Fatalf("ParseSeedHex(%q): expected error", in)
		}
	}
}

func TestList(t *testing.T) {
	s := testStore(t)
	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("empty store lists %d entries", len(entries))
	}

	if _, _, err := s.InitRootKey("beta", testSeedBytes(), false); err != nil {
		t.Fatalf("InitRootKey: %v", err)
	}
	if _, _, err := s.InitRootKey("acme", testSeedBytes(), false); err != nil {
		t.Fatalf("InitRootKey: %v", err)
	}
	if _, _, err := s.DeriveRoleKey("acme", "issuer", false); err != nil {
		t.Fatalf("DeriveRoleKey: %v", err)
	}
	if _, _, err := s.DeriveRoleKey("acme", "audit", false); err != nil {
		t.Fatalf("DeriveRoleKey: %v", err)
	}

	entries, err = s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Name != "acme" || entries[1].Name != "beta" {
		t.Fatalf("entries not sorted by name: %+v", entries)
	}
	if len(entries[0].Roles) != 2 || entries[0].Roles[0] != "audit" || entries[0].Roles[1] != "issuer" {
		t.Fatalf("acme roles = %v", entries[0].Roles)
	}
}
