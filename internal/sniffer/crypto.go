package sniffer

import (
	"crypto/sha256"

	"golang.org/x/crypto/chacha20"
)

// sessionCipher holds the keystream used to decrypt one reassembled
// message of a session. The sniffer builds a fresh one from the
// session's key material for every message.
//
// The teacher's internal/crypto.GameCrypt is an XOR rolling cipher
// keyed by a fixed 16-byte key whose bytes [8:12] shift by packet size
// after every call. This port keeps that "rotating per-session key"
// shape (spec.md §4.2: "AEAD/XOR-style decryption") but generalizes the
// primitive to golang.org/x/crypto/chacha20, since the pre-shared key
// table this system draws from supplies opaque key material per
// version id rather than a single fixed constant, and chacha20 is the
// idiomatic Go stream cipher for that shape of problem.
type sessionCipher struct {
	cipher *chacha20.Cipher
}

// deriveSessionKey combines the reference database's pre-shared key for
// a version id with the handshake nonce into a chacha20 key/nonce pair.
// Folding the nonce into the key (rather than using it directly as the
// chacha20 nonce) keeps every session's keystream distinct even across
// repeated handshakes against the same version id.
func deriveSessionKey(presharedKey []byte, nonce uint64) (key [32]byte, streamNonce [12]byte) {
	h := sha256.New()
	h.Write(presharedKey)
	var nonceBytes [8]byte
	putUint64LE(nonceBytes[:], nonce)
	h.Write(nonceBytes[:])
	sum := h.Sum(nil)
	copy(key[:], sum)
	copy(streamNonce[:], sum[20:32])
	return key, streamNonce
}

func newSessionCipher(presharedKey []byte, nonce uint64) (*sessionCipher, error) {
	key, streamNonce := deriveSessionKey(presharedKey, nonce)
	c, err := chacha20.NewUnauthenticatedCipher(key[:], streamNonce[:])
	if err != nil {
		return nil, err
	}
	return &sessionCipher{cipher: c}, nil
}

// decrypt transforms data in place.
func (sc *sessionCipher) decrypt(data []byte) {
	sc.cipher.XORKeyStream(data, data)
}

func putUint64LE(b []byte, v uint64) {
	for i := range 8 {
		b[i] = byte(v >> (8 * i))
	}
}
