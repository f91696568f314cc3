package render

import (
	"fmt"
	"math/big"
	"strings"
)

const uploadScheme = "upload://"

const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// rewriteUpload turns an internal upload:// target into a public URL.
// Other targets pass through untouched.
func (r *Renderer) rewriteUpload(dest string) (string, error) {
	if !strings.HasPrefix(dest, uploadScheme) {
		return dest, nil
	}
	token := strings.TrimPrefix(dest, uploadScheme)
	if i := strings.IndexByte(token, '.'); i >= 0 {
		token = token[:i]
	}
	hexed, err := decodeBase62(token)
	if err != nil {
		return "", fmt.Errorf("rewrite %q: %w", dest, err)
	}
	return r.baseURL + "/uploads/default/" + hexed, nil
}

// decodeBase62 decodes a base62 upload token into its hex form.
func decodeBase62(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty upload token")
	}
	n := new(big.Int)
	base := big.NewInt(62)
	digit := new(big.Int)
	for _, c := range s {
		idx := strings.IndexRune(base62Alphabet, c)
		if idx < 0 {
			return "", fmt.Errorf("invalid base62 digit %q", c)
		}
		n.Mul(n, base)
		n.Add(n, digit.SetInt64(int64(idx)))
	}
	return n.Text(16), nil
}
