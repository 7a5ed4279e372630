package credentials

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-auth-client/apierrors"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	slotAccess  = "access"
	slotRefresh = "refresh"
)

var _ Store = (*SealedStore)(nil)

// SealedStore encrypts secrets with XChaCha20-Poly1305 before handing them to
// the wrapped store. The slot name is bound as additional data so an access
// token ciphertext cannot be replayed into the refresh slot.
type SealedStore struct {
	inner Store
	key   []byte
}

// ParseSealKey accepts a 32 byte key encoded as hex or standard base64
func ParseSealKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if key, err := hex.DecodeString(encoded); err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(encoded); err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	return nil, fmt.Errorf("%w: expected %d bytes as hex or base64", apierrors.ErrSealKey, chacha20poly1305.KeySize)
}

func NewSealedStore(inner Store, key []byte) (*SealedStore, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", apierrors.ErrSealKey, len(key))
	}
	return &SealedStore{inner: inner, key: append([]byte(nil), key...)}, nil
}

func (s *SealedStore) GetAccess(ctx context.Context) (string, error) {
	sealed, err := s.inner.GetAccess(ctx)
	if err != nil {
		return "", err
	}
	return s.open(slotAccess, sealed)
}

func (s *SealedStore) SetAccess(ctx context.Context, token string) error {
	sealed, err := s.seal(slotAccess, token)
	if err != nil {
		return err
	}
	return s.inner.SetAccess(ctx, sealed)
}

func (s *SealedStore) GetRefresh(ctx context.Context) (string, error) {
	sealed, err := s.inner.GetRefresh(ctx)
	if err != nil {
		return "", err
	}
	return s.open(slotRefresh, sealed)
}

func (s *SealedStore) SetRefresh(ctx context.Context, token string) error {
	sealed, err := s.seal(slotRefresh, token)
	if err != nil {
		return err
	}
	return s.inner.SetRefresh(ctx, sealed)
}

func (s *SealedStore) ClearAll(ctx context.Context) error {
	return s.inner.ClearAll(ctx)
}

func (s *SealedStore) seal(slot, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("seal %s: %w", slot, err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("seal %s: failed to generate nonce: %w", slot, err)
	}
	out := aead.Seal(nonce, nonce, []byte(plaintext), []byte(slot))
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *SealedStore) open(slot, sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", slot, err)
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", slot, err)
	}
	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("open %s: ciphertext too short", slot)
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(slot))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", slot, err)
	}
	return string(plaintext), nil
}
