package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"

	"recipe-admin/internal/model"
)

// StorageKey is the fixed key the session is persisted under.
const StorageKey = "auth-storage"

var ErrStateNotFound = model.ErrStateNotFound

// Persister stores opaque client state by key.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// FilePersister keeps every key in a single JSON document on disk.
type FilePersister struct {
	path string
	mu   sync.Mutex
}

func NewFilePersister(path string) (*FilePersister, error) {
	if path == "" {
		return nil, fmt.Errorf("session file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	return &FilePersister{path: path}, nil
}

func (p *FilePersister) Load(_ context.Context, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.readLocked()
	if err != nil {
		return nil, err
	}

	encoded, ok := doc[key]
	if !ok {
		return nil, ErrStateNotFound
	}

	return base64.StdEncoding.DecodeString(encoded)
}

func (p *FilePersister) Save(_ context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.readLocked()
	if err != nil {
		return err
	}
	doc[key] = base64.StdEncoding.EncodeToString(value)

	return p.writeLocked(doc)
}

func (p *FilePersister) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.readLocked()
	if err != nil {
		return err
	}
	delete(doc, key)

	return p.writeLocked(doc)
}

func (p *FilePersister) readLocked() (map[string]string, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	doc := map[string]string{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}

	return doc, nil
}

func (p *FilePersister) writeLocked(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	return os.Rename(tmp, p.path)
}

// SealedPersister encrypts values with NaCl secretbox before handing them
// to the wrapped persister. The key is the SHA-256 of the secret.
type SealedPersister struct {
	next Persister
	key  [32]byte
}

// Seal wraps next; an empty secret returns next unchanged.
func Seal(next Persister, secret string) Persister {
	if secret == "" {
		return next
	}
	return &SealedPersister{next: next, key: sha256.Sum256([]byte(secret))}
}

func (p *SealedPersister) Load(ctx context.Context, key string) ([]byte, error) {
	sealed, err := p.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < 24 {
		return nil, fmt.Errorf("persisted state is not sealed")
	}

	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	opened, ok := secretbox.Open(nil, sealed[24:], &nonce, &p.key)
	if !ok {
		return nil, fmt.Errorf("persisted state cannot be opened with the configured secret")
	}

	return opened, nil
}

func (p *SealedPersister) Save(ctx context.Context, key string, value []byte) error {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	return p.next.Save(ctx, key, secretbox.Seal(nonce[:], value, &nonce, &p.key))
}

func (p *SealedPersister) Delete(ctx context.Context, key string) error {
	return p.next.Delete(ctx, key)
}

// MemoryPersister keeps state in process; used when persistence is disabled and in tests.
type MemoryPersister struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{values: map[string][]byte{}}
}

func (m *MemoryPersister) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *MemoryPersister) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryPersister) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
