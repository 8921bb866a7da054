package lifecycle

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// digestChunkSize is the read buffer used while digesting. Content is
// streamed through the hash in chunks of this size so files larger than
// RAM digest in constant memory.
const digestChunkSize = 1024 * 1024 // 1MB

// DigestReader computes the SHA-256 digest of everything readable from r,
// returned as a hex-encoded string.
func DigestReader(r io.Reader) (string, error) {
	hasher := sha256.New()
	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(hasher, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// DigestFile computes the SHA-256 digest of a file's full byte content.
// Failure to open or read yields a *ReadError; read errors are transient
// and retried on later runs, unlike digest mismatches.
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", NewReadError(path, err)
	}
	defer f.Close()

	digest, err := DigestReader(f)
	if err != nil {
		return "", NewReadError(path, err)
	}
	return digest, nil
}
