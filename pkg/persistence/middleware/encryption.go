package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/ports"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrUnsealed is returned by Load when a stored state carries plaintext
// answers although the store is configured to encrypt them.
var ErrUnsealed = errors.New("state holds unencrypted answers")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new data. Must be KeySize bytes.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt,
	// so keys can be rotated without downtime.
	FallbackKeys [][]byte
}

// Validate checks key lengths.
func (c EncryptionConfig) Validate() error {
	if len(c.ActiveKey) != KeySize {
		return fmt.Errorf("active key must be %d bytes, got %d", KeySize, len(c.ActiveKey))
	}
	for i, k := range c.FallbackKeys {
		if len(k) != KeySize {
			return fmt.Errorf("fallback key %d must be %d bytes, got %d", i, KeySize, len(k))
		}
	}
	return nil
}

// ParseKeys decodes base64 keys; the first is active.
func ParseKeys(active string, fallbacks ...string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	key, err := base64.StdEncoding.DecodeString(active)
	if err != nil {
		return cfg, fmt.Errorf("decode active key: %w", err)
	}
	cfg.ActiveKey = key
	for i, f := range fallbacks {
		k, err := base64.StdEncoding.DecodeString(f)
		if err != nil {
			return cfg, fmt.Errorf("decode fallback key %d: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, k)
	}
	return cfg, cfg.Validate()
}

// answers is the sealed part of a state: everything the student told us.
type answers struct {
	Independent   *bool   `json:"independent,omitempty"`
	HouseholdSize *int    `json:"household_size,omitempty"`
	IncomeRange   *string `json:"income_range,omitempty"`
	AssetRange    *string `json:"asset_range,omitempty"`
	HasTaxInfo    *bool   `json:"has_tax_info,omitempty"`
	HasBankInfo   *bool   `json:"has_bank_info,omitempty"`
}

func (a answers) empty() bool {
	return a == answers{}
}

func takeAnswers(s *domain.State) answers {
	a := answers{
		Independent:   s.Independent,
		HouseholdSize: s.HouseholdSize,
		IncomeRange:   s.IncomeRange,
		AssetRange:    s.AssetRange,
		HasTaxInfo:    s.HasTaxInfo,
		HasBankInfo:   s.HasBankInfo,
	}
	s.Independent, s.HouseholdSize, s.IncomeRange, s.AssetRange = nil, nil, nil, nil
	s.HasTaxInfo, s.HasBankInfo = nil, nil
	return a
}

func (a answers) restore(s *domain.State) {
	s.Independent = a.Independent
	s.HouseholdSize = a.HouseholdSize
	s.IncomeRange = a.IncomeRange
	s.AssetRange = a.AssetRange
	s.HasTaxInfo = a.HasTaxInfo
	s.HasBankInfo = a.HasBankInfo
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryptionMiddleware seals the answers of every saved state with
// AES-GCM. Flow, award year and timestamps stay readable so that stores can
// still index and expire sessions.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	envelope := state.Clone()
	a := takeAnswers(envelope)
	envelope.Sealed = ""
	if !a.empty() {
		plainText, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to marshal answers: %w", err)
		}
		ciphertext, err := encrypt(plainText, m.config.ActiveKey, []byte(sessionID))
		if err != nil {
			return fmt.Errorf("failed to encrypt answers: %w", err)
		}
		envelope.Sealed = base64.StdEncoding.EncodeToString(ciphertext)
	}
	return m.next.Save(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if envelope.Sealed == "" {
		if !takeAnswers(envelope.Clone()).empty() {
			return nil, ErrUnsealed
		}
		return envelope, nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plainText, err := decryptWithRotation(ciphertext, []byte(sessionID), m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt answers: %w", err)
	}

	var a answers
	if err := json.Unmarshal(plainText, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted answers: %w", err)
	}
	state := envelope.Clone()
	state.Sealed = ""
	a.restore(state)
	return state, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// The session ID is bound as additional data, so an envelope copied to
// another session does not open.
func encrypt(plaintext, key, sessionID []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, sessionID), nil
}

func decryptWithRotation(ciphertext, sessionID, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey, sessionID); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key, sessionID); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, key, sessionID []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, sessionID)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
