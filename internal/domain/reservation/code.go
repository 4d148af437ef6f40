package reservation

import (
	"crypto/rand"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

// CodeIssuer produces opaque redemption codes. Issued codes are never
// reused; the store's unique constraint is the authoritative check, the
// issuer only has to make collisions rare.
type CodeIssuer interface {
	NewCode() (string, error)
}

const (
	codePrefix = "FDY-"
	codeLen    = 8
	// codeAlphabet omits 0/O, 1/I/L and vowels that spell words: codes end
	// up on pickup screens and are read out loud at the counter.
	codeAlphabet = "23456789BCDFGHJKMNPQRSTVWXZ"

	issuerBloomCapacity = 1_000_000
	issuerBloomFPR      = 0.001
)

// RandomCodeIssuer generates codes from crypto/rand and tracks everything it
// has handed out in a bloom filter, so a within-process collision is caught
// before the database round-trip. A bloom false positive only costs one
// extra generation.
type RandomCodeIssuer struct {
	mu     sync.Mutex
	issued *bloom.BloomFilter
}

// NewRandomCodeIssuer creates a RandomCodeIssuer sized for a million codes.
func NewRandomCodeIssuer() *RandomCodeIssuer {
	return &RandomCodeIssuer{
		issued: bloom.NewWithEstimates(issuerBloomCapacity, issuerBloomFPR),
	}
}

// NewCode returns a fresh redemption code of the form FDY-XXXXXXXX.
func (g *RandomCodeIssuer) NewCode() (string, error) {
	buf := make([]byte, codeLen)
	for range 3 {
		if _, err := rand.Read(buf); err != nil {
			return "", errors.Wrap(err, "read random bytes")
		}
		for i := range buf {
			buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := codePrefix + string(buf)

		g.mu.Lock()
		seen := g.issued.TestOrAddString(code)
		g.mu.Unlock()
		if !seen {
			return code, nil
		}
	}
	return "", errors.New("exhausted code generation attempts")
}
