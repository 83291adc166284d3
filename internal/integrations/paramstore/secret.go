package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// tokenPayload is the JSON shape stored in SSM for API credentials.
type tokenPayload struct {
	Token string `json:"token"`
}

// DecodeToken extracts the token from a {"token": "..."} parameter value.
func DecodeToken(raw string) (string, error) {
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("paramstore: unmarshal token value as JSON: %w", err)
	}
	if strings.TrimSpace(tp.Token) == "" {
		return "", errors.New("paramstore: token is empty")
	}
	return tp.Token, nil
}

// Secret lazily resolves a JSON token parameter. A successful lookup is
// cached for the lifetime of the process; failures are retried on the next
// call.
type Secret struct {
	getter Getter
	name   string

	mu    sync.Mutex
	value string
}

// NewSecret returns a Secret reading parameter name through getter.
func NewSecret(getter Getter, name string) (*Secret, error) {
	if getter == nil {
		return nil, errors.New("paramstore: getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("paramstore: secret name is empty")
	}
	return &Secret{getter: getter, name: name}, nil
}

// Name returns the parameter name backing the secret.
func (s *Secret) Name() string { return s.name }

// Value returns the token, fetching it on first use.
func (s *Secret) Value(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value != "" {
		return s.value, nil
	}

	raw, err := s.getter.GetParameter(ctx, s.name)
	if err != nil {
		return "", fmt.Errorf("paramstore: fetch %s: %w", s.name, err)
	}
	token, err := DecodeToken(raw)
	if err != nil {
		return "", err
	}
	s.value = token
	return token, nil
}
