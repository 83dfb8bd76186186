package crypt

import (
	"os"

	"github.com/leorami/signal-export/internal/keymat"
)

// Byte layouts of the two cipher-mode conventions seen in the wild.
const (
	gcmNonceSize = 12
	gcmTagSize   = 16
	cbcIVSize    = 16
	aesBlockSize = 16

	minGCMLen = gcmNonceSize + gcmTagSize
	minCBCLen = cbcIVSize + aesBlockSize
)

// Mode names reported in audit records.
const (
	ModeGCM = "gcm"
	ModeCBC = "cbc"
)

// AttemptDecrypt reads src and tries the authenticated layout
// [nonce|ciphertext|tag] first, then the unauthenticated [iv|ciphertext],
// writing plaintext to dst on the first success. Returns the mode used, or
// "" when nothing worked. The order matters: both layouts can structurally
// "succeed" on the wrong key or mode, and exit status plus non-empty output
// are the only success oracles available, so a structurally valid garbage
// result is an accepted risk. All failures, including I/O and subprocess
// errors, collapse to "" with any partial dst removed.
func AttemptDecrypt(src, dst string, key []byte, p Provider) string {
	if p == nil || !p.Available() || len(key) != keymat.KeySize {
		return ""
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return ""
	}
	if tryGCM(data, dst, key, p) {
		return ModeGCM
	}
	if tryCBC(data, dst, key, p) {
		return ModeCBC
	}
	return ""
}

func tryGCM(data []byte, dst string, key []byte, p Provider) bool {
	if len(data) < minGCMLen {
		return false
	}
	nonce := data[:gcmNonceSize]
	tag := data[len(data)-gcmTagSize:]
	pt, err := p.DecryptGCM(key, nonce, tag, data[gcmNonceSize:len(data)-gcmTagSize])
	return commit(dst, pt, err)
}

func tryCBC(data []byte, dst string, key []byte, p Provider) bool {
	if len(data) < minCBCLen {
		return false
	}
	pt, err := p.DecryptCBC(key, data[:cbcIVSize], data[cbcIVSize:])
	return commit(dst, pt, err)
}

// commit writes plaintext to dst, treating errors and empty output as
// failure and leaving no partial file behind.
func commit(dst string, pt []byte, err error) bool {
	if err != nil || len(pt) == 0 {
		os.Remove(dst)
		return false
	}
	if werr := os.WriteFile(dst, pt, 0644); werr != nil {
		os.Remove(dst)
		return false
	}
	return true
}
