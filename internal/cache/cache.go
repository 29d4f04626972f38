// Package cache persists OAuth tokens between CLI invocations.
//
// FileStore keeps one JSON file per credential set under the user cache
// directory. RedisStore shares tokens between hosts. Disable both with
// ASSEMBLY_NO_CACHE=1.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
)

type entry struct {
	CachedAt time.Time     `json:"cached_at"`
	Token    *oauth2.Token `json:"token"`
}

// FileStore stores tokens as JSON files in dir.
type FileStore struct {
	dir string
	now func() time.Time
}

var _ api.TokenStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir (typically from DefaultDir).
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// Load returns the token saved under key, or nil on a miss (no file, expired,
// unreadable or disabled).
func (s *FileStore) Load(_ context.Context, key string) (*oauth2.Token, error) {
	if disabled() {
		return nil, nil
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Token == nil {
		return nil, nil
	}
	if !e.Token.Expiry.IsZero() && !s.now().Before(e.Token.Expiry) {
		return nil, nil
	}
	return e.Token, nil
}

// Save writes tok under key. Tokens are credentials, so files are private
// to the user.
func (s *FileStore) Save(_ context.Context, key string, tok *oauth2.Token) error {
	if disabled() || tok == nil {
		return nil
	}
	data, err := json.Marshal(entry{CachedAt: s.now(), Token: tok})
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	p := s.path(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return os.Rename(tmp, p)
}

// Delete removes the token saved under key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ClearAll removes all token files from the directory.
// For safety, it only removes files matching this project's cache filename scheme.
func ClearAll(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !isCacheFilename(name) {
			continue
		}
		_ = os.Remove(filepath.Join(dir, name))
	}
}

// DefaultDir returns "$XDG_CACHE_HOME/assembly-cli" or the platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "assembly-cli"), nil
}

func disabled() bool {
	return os.Getenv("ASSEMBLY_NO_CACHE") != ""
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "token"
	}
	key = strings.ReplaceAll(key, "/", "-")
	key = strings.ReplaceAll(key, "\\", "-")
	return key
}

func isCacheFilename(name string) bool {
	// Expected: "<prefix>_<12hex>.json"
	if filepath.Ext(name) != ".json" {
		return false
	}
	base := strings.TrimSuffix(name, ".json")
	prefix, suffix, ok := strings.Cut(base, "_")
	if !ok || prefix == "" {
		return false
	}
	return len(suffix) == 12 && isHex(suffix)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
