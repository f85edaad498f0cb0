// Package biscuit extracts cookies from local browser profile stores
// (Chromium family, Firefox, Safari) and normalizes them into one model.
//
// It is meant for local tooling: dev scripts, CLI helpers, test harnesses.
// Reading a profile may trigger a keychain or keyring prompt, so the package
// is not suitable for server-side use. Live stores are never written to;
// every query runs against a private temporary snapshot.
package biscuit
