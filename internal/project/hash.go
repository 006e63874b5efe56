package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest - фиксированный 256 битный хеш содержимого.
type Digest [32]byte

// Hash digests one byte slice.
func Hash(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// Combine: H( first || rest... ). Порядок частей должен быть детерминированным.
func Combine(first Digest, rest ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(first[:])
	for _, d := range rest {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

func (d Digest) String() string { return hex.EncodeToString(d[:]) }
