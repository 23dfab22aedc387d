package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"io"

	"golang.org/x/crypto/scrypt"
)

// Layout of an encrypted export:
//
//	version (1) | salt (32) | iv (16) | AES-256-CTR ciphertext | HMAC-SHA512 (64)
//
// Both keys are derived from the passphrase with scrypt over the same salt.
// The HMAC covers everything before it.
const (
	cryptVersion byte = 0x2
	saltSize          = 32
	ivSize            = aes.BlockSize
	hmacSize          = sha512.Size
	bufferSize        = 32 * 1024
)

var (
	ErrInvalidHMAC        = errors.New("invalid HMAC: wrong passphrase or corrupted file")
	ErrUnsupportedVersion = errors.New("unsupported encrypted file version")
	ErrTruncated          = errors.New("encrypted file is truncated")
)

// Encrypt streams in to out, encrypted with a key derived from passphrase.
func Encrypt(in io.Reader, out io.Writer, passphrase []byte) error {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return err
	}

	keyAes, keyHmac, err := deriveKeys(passphrase, salt)
	if err != nil {
		return err
	}

	block, err := aes.NewCipher(keyAes)
	if err != nil {
		return err
	}
	ctr := cipher.NewCTR(block, iv)
	mac := hmac.New(sha512.New, keyHmac)

	w := io.MultiWriter(out, mac)
	header := append([]byte{cryptVersion}, salt...)
	header = append(header, iv...)
	if _, err := w.Write(header); err != nil {
		return err
	}

	buf := make([]byte, bufferSize)
	for {
		n, readErr := in.Read(buf)
		if n > 0 {
			ctr.XORKeyStream(buf[:n], buf[:n])
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}

	_, err = out.Write(mac.Sum(nil))
	return err
}

// Decrypt verifies and decrypts in. Nothing is written to out unless the
// HMAC matches.
func Decrypt(in io.Reader, out io.Writer, passphrase []byte) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	if len(data) < 1+saltSize+ivSize+hmacSize {
		return ErrTruncated
	}
	if data[0] != cryptVersion {
		return ErrUnsupportedVersion
	}

	salt := data[1 : 1+saltSize]
	iv := data[1+saltSize : 1+saltSize+ivSize]
	body := data[1+saltSize+ivSize : len(data)-hmacSize]
	sum := data[len(data)-hmacSize:]

	keyAes, keyHmac, err := deriveKeys(passphrase, salt)
	if err != nil {
		return err
	}

	mac := hmac.New(sha512.New, keyHmac)
	mac.Write(data[:len(data)-hmacSize])
	if !hmac.Equal(sum, mac.Sum(nil)) {
		return ErrInvalidHMAC
	}

	block, err := aes.NewCipher(keyAes)
	if err != nil {
		return err
	}
	plain := make([]byte, len(body))
	cipher.NewCTR(block, iv).XORKeyStream(plain, body)

	_, err = out.Write(plain)
	return err
}

func deriveKeys(passphrase, salt []byte) ([]byte, []byte, error) {
	key, err := scrypt.Key(passphrase, salt, 32768, 8, 1, 64)
	if err != nil {
		return nil, nil, err
	}

	return key[:32], key[32:], nil
}
