// Package crypt holds the best-effort attachment decryption pipeline. The
// cryptographic primitive itself is an injected capability so the fixed
// attempt ordering stays testable without spawning processes.
package crypt

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os/exec"
	"sync"
)

// Provider is the external cryptographic primitive. Implementations decrypt
// one buffer per call and report failure through the error; they never panic.
type Provider interface {
	// Available reports whether the primitive can be invoked at all. It is
	// probed once per run; when false the whole decryption capability is off.
	Available() bool
	// DecryptGCM performs authenticated AES-256-GCM decryption with empty
	// associated data.
	DecryptGCM(key, nonce, tag, ciphertext []byte) ([]byte, error)
	// DecryptCBC performs unauthenticated AES-256-CBC decryption.
	DecryptCBC(key, iv, ciphertext []byte) ([]byte, error)
}

// OpenSSLProvider shells out to the openssl CLI, feeding ciphertext on stdin
// and reading plaintext from stdout.
type OpenSSLProvider struct {
	Bin string

	probe sync.Once
	ok    bool
}

func NewOpenSSLProvider(bin string) *OpenSSLProvider {
	if bin == "" {
		bin = "openssl"
	}
	return &OpenSSLProvider{Bin: bin}
}

// Available runs a lightweight "version" invocation once and caches the
// result for the rest of the run.
func (p *OpenSSLProvider) Available() bool {
	p.probe.Do(func() {
		p.ok = exec.Command(p.Bin, "version").Run() == nil
	})
	return p.ok
}

func (p *OpenSSLProvider) DecryptGCM(key, nonce, tag, ciphertext []byte) ([]byte, error) {
	cmd := exec.Command(p.Bin, "enc", "-aes-256-gcm", "-d",
		"-K", hex.EncodeToString(key),
		"-iv", hex.EncodeToString(nonce),
		"-nosalt", "-nopad",
		"-aad", "",
		"-tag", hex.EncodeToString(tag))
	cmd.Stdin = bytes.NewReader(ciphertext)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("crypt: openssl gcm: %w", err)
	}
	return out, nil
}

func (p *OpenSSLProvider) DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	cmd := exec.Command(p.Bin, "enc", "-aes-256-cbc", "-d",
		"-K", hex.EncodeToString(key),
		"-iv", hex.EncodeToString(iv))
	cmd.Stdin = bytes.NewReader(ciphertext)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("crypt: openssl cbc: %w", err)
	}
	return out, nil
}
