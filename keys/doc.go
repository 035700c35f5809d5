// Package keys provides key-related helpers for the seal engine: the
// JWKS-like key set the verifier resolves key ids against, key-id derivation,
// and a local-first "KMS-lite" store for issuer signing seeds.
//
// The key set and derivation primitives are stable API. The filesystem-backed
// store is a convenience for the CLI and development setups; production
// deployments are expected to hold signing keys in an external KMS/HSM and
// wrap them in a sign.Provider.
package keys
