package crypto

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Address identifies an account on the ledger. Keyed addresses are ed25519 public
// keys; derived addresses are off-curve points with no private key.
type Address = solana.PublicKey

// ZeroAddress is the all-zero address, used as "unset".
var ZeroAddress = Address{}

// DecodeAddress parses a base58 encoded address.
func DecodeAddress(addrStr string) (Address, error) {
	trimmed := strings.TrimSpace(addrStr)
	if trimmed == "" {
		return Address{}, fmt.Errorf("address must not be empty")
	}
	addr, err := solana.PublicKeyFromBase58(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("invalid base58 address %q: %w", trimmed, err)
	}
	return addr, nil
}

// EncodeSeed renders an arbitrary seed as base58, the same alphabet used for
// addresses, so session identities can be passed around as text.
func EncodeSeed(seed []byte) string {
	return base58.Encode(seed)
}

// DecodeSeed is the inverse of EncodeSeed.
func DecodeSeed(s string) ([]byte, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("seed must not be empty")
	}
	out, err := base58.Decode(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 seed: %w", err)
	}
	return out, nil
}

// --- Key Management ---

// PrivateKey is an ed25519 signing key.
type PrivateKey struct {
	key solana.PrivateKey
}

func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// Bytes returns the 64 byte keypair encoding (seed followed by public key).
func (k *PrivateKey) Bytes() []byte {
	return append([]byte(nil), k.key...)
}

// Address returns the public address controlled by the key.
func (k *PrivateKey) Address() Address {
	return k.key.PublicKey()
}

// Sign signs the payload with the key.
func (k *PrivateKey) Sign(payload []byte) (solana.Signature, error) {
	return k.key.Sign(payload)
}

func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 64 {
		return nil, fmt.Errorf("private key must be 64 bytes, got %d", len(b))
	}
	expected := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	if !bytes.Equal(expected, b) {
		return nil, fmt.Errorf("private key: public half does not match seed")
	}
	return &PrivateKey{key: solana.PrivateKey(expected)}, nil
}
