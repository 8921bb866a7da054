package lifecycle

import (
	"context"
)

// VerifyResult carries the outcome of one source/archive comparison.
type VerifyResult struct {
	// Match is true when both digests are identical.
	Match bool

	// SourceDigest is the SHA-256 hex digest of the local file.
	SourceDigest string

	// ArchiveDigest is the SHA-256 hex digest of the archive copy,
	// computed from a full, independent re-read of the archived bytes.
	ArchiveDigest string
}

// Verifier compares local files against their archive copies by SHA-256
// digest. Both sides are always read in full; the verifier never trusts a
// digest computed as a side effect of the copy, because the point of
// verification is to catch exactly the corruption a copy can introduce.
//
// An unreadable file on either side is a *ReadError. A readable pair with
// differing digests is not an error from the verifier's perspective; the
// caller inspects VerifyResult.Match and decides what a mismatch means.
type Verifier struct {
	sink Sink
}

// NewVerifier creates a Verifier that reads archive copies from sink.
func NewVerifier(sink Sink) *Verifier {
	return &Verifier{sink: sink}
}

// SourceDigest computes the SHA-256 digest of the local file at path.
func (v *Verifier) SourceDigest(path string) (string, error) {
	return DigestFile(path)
}

// ArchiveDigest re-reads the named archive object end to end and returns
// its SHA-256 digest.
func (v *Verifier) ArchiveDigest(ctx context.Context, name string) (string, error) {
	rc, err := v.sink.Open(ctx, name)
	if err != nil {
		return "", NewReadError(name, err)
	}
	defer rc.Close()

	digest, err := DigestReader(rc)
	if err != nil {
		return "", NewReadError(name, err)
	}
	return digest, nil
}

// Verify digests the local file at sourcePath and the archive object name
// independently and compares the results. It returns a *ReadError when
// either side cannot be read; a completed comparison always returns a
// result, matched or not.
func (v *Verifier) Verify(ctx context.Context, sourcePath, name string) (*VerifyResult, error) {
	sourceDigest, err := v.SourceDigest(sourcePath)
	if err != nil {
		return nil, err
	}

	archiveDigest, err := v.ArchiveDigest(ctx, name)
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		Match:         sourceDigest == archiveDigest,
		SourceDigest:  sourceDigest,
		ArchiveDigest: archiveDigest,
	}, nil
}
