package assetid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

func generate(prefix string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return prefix + strings.ToLower(id.String())
}

// NewDraft returns a dft_* ULID string for content drafts.
func NewDraft() string {
	return generate("dft_")
}

// NewUpload returns an upl_* ULID string naming one upload attempt.
func NewUpload() string {
	return generate("upl_")
}

// IsValid reports whether the string is a prefixed ULID.
func IsValid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// Parse strips the prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, '_'); idx >= 0 {
		value = value[idx+1:]
	}
	return ulid.Parse(value)
}
