package config

import (
	"encoding/base64"
	"io"
)

const (
	PasswordLength  = 24
	passwordCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	cryptKeySize    = 32
)

// GeneratePassword returns n characters drawn uniformly from [A-Za-z0-9].
func GeneratePassword(random io.Reader, n int) (string, error) {
	// largest multiple of the charset size that fits in a byte, bytes above
	// it are rejected to keep the distribution uniform
	limit := 256 - 256%len(passwordCharset)
	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		if _, err := io.ReadFull(random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, passwordCharset[int(b)%len(passwordCharset)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}

// GenerateKey returns 32 random bytes, base64 encoded.
func GenerateKey(random io.Reader) (string, error) {
	key := make([]byte, cryptKeySize)
	if _, err := io.ReadFull(random, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
