// Package qhash implements the running commit digest of a ledger
// transaction. The server recomputes the same digest from the statements it
// executed and rejects the commit on any disagreement.
package qhash

import (
	"bytes"
	"crypto/sha256"
)

// Size is the digest length in bytes.
const Size = sha256.Size

// Digest accumulates the transaction hash. The zero value is not usable;
// construct with New.
type Digest struct {
	sum [Size]byte
}

// New seeds the digest with the hash of the transaction id.
func New(transactionID string) *Digest {
	return &Digest{
		sum: sha256.Sum256([]byte(transactionID)),
	}
}

// Update folds one executed statement into the digest. parameters are the
// binary-encoded statement parameters in execution order. The fold is a
// left fold over the statement sequence: executing the same statements in a
// different order produces a different digest, and the server folds in the
// order it executed them.
func (d *Digest) Update(statement string, parameters [][]byte) {
	h := sha256.New()
	h.Write([]byte(statement))
	for _, p := range parameters {
		ph := sha256.Sum256(p)
		h.Write(ph[:])
	}
	d.sum = sha256.Sum256(Dot(d.sum[:], h.Sum(nil)))
}

// Sum returns a copy of the current digest value.
func (d *Digest) Sum() []byte {
	out := make([]byte, Size)
	copy(out, d.sum[:])

	return out
}

// Equal reports whether the current digest equals other.
func (d *Digest) Equal(other []byte) bool {
	return bytes.Equal(d.sum[:], other)
}

// Dot concatenates a and b ordered by unsigned lexicographic comparison,
// smaller first. The ordering pins the byte layout across platforms.
func Dot(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	if bytes.Compare(a, b) <= 0 {
		out = append(out, a...)
		out = append(out, b...)
	} else {
		out = append(out, b...)
		out = append(out, a...)
	}

	return out
}
