package sniff

import (
	"bytes"
	"math"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// OctetStream is the generic fallback type for anything we cannot identify.
const OctetStream = "application/octet-stream"

// EncryptedEntropyThreshold is the bits-per-byte cutoff above which an
// unidentifiable file is considered ciphertext. 7.4 is empirical: encrypted
// and compressed data score close to 8, most structured plaintext stays below.
var EncryptedEntropyThreshold = 7.4

// sampleSize bounds how much of a file the heuristic reads.
const sampleSize = 4096

var magicPrefixes = []struct {
	prefix []byte
	mime   string
}{
	{[]byte("\x89PNG"), "image/png"},
	{[]byte("\xFF\xD8\xFF"), "image/jpeg"},
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte("%PDF"), "application/pdf"},
}

// magicMIME returns the type matching a known magic prefix, or "".
func magicMIME(head []byte) string {
	for _, m := range magicPrefixes {
		if bytes.HasPrefix(head, m.prefix) {
			return m.mime
		}
	}
	if bytes.HasPrefix(head, []byte("RIFF")) && bytes.Contains(head, []byte("WEBP")) {
		return "image/webp"
	}
	return ""
}

func extensionMIME(name string) string {
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if read == 0 && err != nil {
		return nil, err
	}
	return buf[:read], nil
}

// MIMEType infers a content type for the file at path. Resolution order:
// extension table, magic-byte prefix, generic octet-stream. nameHint stands in
// when the on-disk name carries no useful extension. I/O failures degrade to
// the extension or fallback result, never an error.
func MIMEType(path, nameHint string) string {
	name := nameHint
	if path != "" {
		name = filepath.Base(path)
	}
	if mt := extensionMIME(name); mt != "" {
		return mt
	}
	if nameHint != "" && nameHint != name {
		if mt := extensionMIME(nameHint); mt != "" {
			return mt
		}
	}
	if path != "" {
		if head, err := readHead(path, 16); err == nil {
			if mt := magicMIME(head); mt != "" {
				return mt
			}
		}
	}
	return OctetStream
}

// Entropy computes Shannon entropy in bits per byte. Empty input is 0.
func Entropy(b []byte) float64 {
	if len(b) == 0 {
		return 0
	}
	var hist [256]int
	for _, x := range b {
		hist[x]++
	}
	total := float64(len(b))
	var h float64
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}

// LooksEncrypted reports whether the file at path is probably ciphertext.
// Any recognized plaintext magic wins immediately; otherwise the file must
// both sniff as generic octet-stream and exceed the entropy threshold over
// its first 4 KiB. Heuristic only: high-entropy plaintext with an unknown
// header is a false positive we accept, as is ciphertext that kept a
// recognizable header.
func LooksEncrypted(path string) bool {
	head, err := readHead(path, sampleSize)
	if err != nil || len(head) == 0 {
		return false
	}
	if magicMIME(head) != "" {
		return false
	}
	return MIMEType(path, "") == OctetStream && Entropy(head) > EncryptedEntropyThreshold
}
