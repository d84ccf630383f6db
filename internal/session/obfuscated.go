package session

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Obfuscated wraps a Store and base64-encodes values at rest so a token is not
// readable at a glance in the database file. Anyone with the file can decode
// it; this is not encryption and must not be treated as a security boundary.
type Obfuscated struct {
	inner Store
}

// NewObfuscated wraps inner.
func NewObfuscated(inner Store) *Obfuscated {
	return &Obfuscated{inner: inner}
}

func (o *Obfuscated) Get(ctx context.Context, key string) (string, error) {
	raw, err := o.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", key, err)
	}
	return string(decoded), nil
}

func (o *Obfuscated) Set(ctx context.Context, key, value string) error {
	return o.inner.Set(ctx, key, base64.StdEncoding.EncodeToString([]byte(value)))
}

func (o *Obfuscated) Delete(ctx context.Context, key string) error {
	return o.inner.Delete(ctx, key)
}
