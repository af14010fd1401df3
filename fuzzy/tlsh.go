package fuzzy

import (
	"github.com/glaslos/tlsh"
)

// TLSHHasher hashes content with TLSH. TLSH needs a minimum input size and
// byte variance, so HashBytes fails on small or degenerate inputs; callers
// are expected to skip such files.
type TLSHHasher struct{}

func (h TLSHHasher) Name() string {
	return "tlsh"
}

func (h TLSHHasher) HashBytes(content []byte) (string, error) {
	hash, err := tlsh.HashBytes(content)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (h TLSHHasher) Distance(a, b string) (int, error) {
	hashA, err := tlsh.ParseStringToTlsh(a)
	if err != nil {
		return 0, err
	}
	hashB, err := tlsh.ParseStringToTlsh(b)
	if err != nil {
		return 0, err
	}
	return hashA.Diff(hashB), nil
}

func init() {
	Register(TLSHHasher{})
}
