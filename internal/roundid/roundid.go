// Package roundid generates identifiers for blackjack rounds. IDs are
// UUIDv7 values encoded as 26 characters of Crockford base32, so they sort
// by the time the round was dealt.
package roundid

import (
	"io"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded round ID
const Length = 26

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator produces round IDs with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator. A nil RandSource uses crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new round ID using the generator's RandSource
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.randSource != nil {
		id, err = uuid.NewV7FromReader(randReader{g.randSource})
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("failed to generate round id: " + err.Error())
	}
	return encodeBase32(id)
}

// randReader adapts a RandSource to the io.Reader uuid expects
type randReader struct {
	src RandSource
}

var _ io.Reader = randReader{}

func (r randReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.src.IntN(256))
	}
	return len(p), nil
}

// encodeBase32 encodes the 128 bits of id as 26 base32 characters. The
// first character carries only the top 3 bits so it is always 0-7.
func encodeBase32(id uuid.UUID) string {
	result := make([]byte, Length)

	// 130 bits of output for 128 bits of input: pad two zero bits at the front.
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(id[i])
		lo = lo<<8 | uint64(id[i+8])
	}

	for i := Length - 1; i >= 0; i-- {
		result[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}

	return string(result)
}
