package pk2

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/blowfish"
)

const (
	blowfishBlockSize = 8
	blowfishKeyLen    = 56
)

// baseKey and salt are the well-known constants used by the PK2 format's
// key derivation. They are not a secret — every SRO-derived client and
// server ships the same values.
var (
	baseKey = []byte("169841")
	salt    = [10]byte{0x03, 0xF8, 0xE4, 0x44, 0x88, 0x99, 0x3F, 0x64, 0xFE, 0x35}
)

// deriveKey expands the 6-byte base key to the full 56-byte Blowfish key by
// repeating it against the 10-byte salt and XOR-mixing the two streams.
func deriveKey() []byte {
	key := make([]byte, blowfishKeyLen)
	for i := range key {
		key[i] = baseKey[i%len(baseKey)] ^ salt[i%len(salt)]
	}
	return key
}

// blockCipher wraps ECB-mode Blowfish encryption/decryption over 8-byte
// blocks, mirroring internal/crypto.BlowfishCipher but keyed for PK2 rather
// than the LoginServer protocol.
type blockCipher struct {
	cipher *blowfish.Cipher
}

func newBlockCipher() (*blockCipher, error) {
	c, err := blowfish.NewCipher(deriveKey())
	if err != nil {
		return nil, fmt.Errorf("initializing pk2 blowfish cipher: %w", err)
	}
	return &blockCipher{cipher: c}, nil
}

func (b *blockCipher) encrypt(buf []byte) error {
	if len(buf)%blowfishBlockSize != 0 {
		return fmt.Errorf("blowfish encrypt: length %d is not a multiple of %d", len(buf), blowfishBlockSize)
	}
	for i := 0; i < len(buf); i += blowfishBlockSize {
		b.cipher.Encrypt(buf[i:i+blowfishBlockSize], buf[i:i+blowfishBlockSize])
	}
	return nil
}

func (b *blockCipher) decrypt(buf []byte) error {
	if len(buf)%blowfishBlockSize != 0 {
		return fmt.Errorf("blowfish decrypt: length %d is not a multiple of %d", len(buf), blowfishBlockSize)
	}
	for i := 0; i < len(buf); i += blowfishBlockSize {
		b.cipher.Decrypt(buf[i:i+blowfishBlockSize], buf[i:i+blowfishBlockSize])
	}
	return nil
}

var (
	globalCipherOnce sync.Once
	globalCipher     *blockCipher
	globalCipherErr  error
)

// sharedCipher returns the process-wide PK2 Blowfish cipher, lazily
// initialized on first use. The key is constant, so re-keying per block
// read would be wasted work.
func sharedCipher() (*blockCipher, error) {
	globalCipherOnce.Do(func() {
		globalCipher, globalCipherErr = newBlockCipher()
	})
	return globalCipher, globalCipherErr
}
