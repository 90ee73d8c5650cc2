// Package uniuri generates random strings from crypto/rand, used for
// throwaway signing keys in dev mode.
package uniuri
