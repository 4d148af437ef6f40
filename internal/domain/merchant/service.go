package merchant

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

const maxTitleLen = 200

// Registration is the one-time result of registering a restaurant. The
// plaintext key is never stored and never shown again.
type Registration struct {
	Restaurant *Restaurant
	APIKey     string
}

// Service handles restaurant registration and API key verification. Keys are
// hashed with HMAC-SHA256 under a server-side pepper, so neither a database
// dump nor a rainbow table recovers usable credentials.
type Service struct {
	repo   Repository
	pepper []byte
	now    func() time.Time
}

// NewService creates a merchant Service with the given repository and HMAC
// pepper.
func NewService(repo Repository, pepper []byte) *Service {
	return &Service{repo: repo, pepper: pepper, now: time.Now}
}

// Register creates a restaurant and issues its API key.
func (s *Service) Register(ctx context.Context, title string) (*Registration, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
		return nil, errors.Wrap(ErrInvalidInput, "title")
	}

	key, err := newAPIKey()
	if err != nil {
		return nil, errors.Wrap(err, "generate api key")
	}

	r := &Restaurant{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateWithKey(ctx, r, s.HashKey(key)); err != nil {
		return nil, errors.Wrap(err, "create restaurant")
	}

	return &Registration{Restaurant: r, APIKey: key}, nil
}

// Authenticate verifies the presented key against the restaurant's stored
// hash using a constant-time comparison. It returns ErrUnauthorized on any
// failure; callers cannot distinguish an unknown restaurant from a wrong key.
func (s *Service) Authenticate(ctx context.Context, restaurantID, presentedKey string) error {
	if restaurantID == "" || presentedKey == "" {
		return ErrUnauthorized
	}

	rec, err := s.repo.GetKey(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnauthorized
		}
		return errors.Wrap(err, "lookup api key")
	}

	stored, err := hex.DecodeString(rec.KeyHash)
	if err != nil {
		return ErrUnauthorized
	}

	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(presentedKey))
	if subtle.ConstantTimeCompare(mac.Sum(nil), stored) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// HashKey returns the hex HMAC-SHA256 of a plaintext API key.
func (s *Service) HashKey(key string) string {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// newAPIKey returns a fresh key of the form KEY_<32 hex chars>.
func newAPIKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "KEY_" + hex.EncodeToString(buf), nil
}
