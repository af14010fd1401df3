package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/blake3"

	"xfid/logger"
)

// Sum64 returns the xxhash64 digest of content. Used as the cheap identity
// key for corpus records and baseline matching.
func Sum64(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// Sum64String formats Sum64 as fixed-width hex, the form stored in baseline
// files.
func Sum64String(content []byte) string {
	return fmt.Sprintf("%016x", Sum64(content))
}

// ComputeDigests returns the requested digests of content keyed by
// algorithm name. Unknown algorithms are skipped with a warning.
func ComputeDigests(content []byte, algorithms []string) map[string]string {
	digests := make(map[string]string, len(algorithms))
	for _, algorithm := range algorithms {
		switch algorithm {
		case "sha256":
			sum := sha256.Sum256(content)
			digests[algorithm] = hex.EncodeToString(sum[:])
		case "blake3":
			sum := blake3.Sum256(content)
			digests[algorithm] = hex.EncodeToString(sum[:])
		case "xxh64":
			digests[algorithm] = Sum64String(content)
		default:
			logger.Warnf("Unsupported digest algorithm: %s", algorithm)
		}
	}
	return digests
}
