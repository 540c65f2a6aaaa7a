package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// MemoryStore keeps assets in process memory. Development only.
type MemoryStore struct {
	mu        sync.RWMutex
	publicURL string
	objects   map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore(publicURL string) *MemoryStore {
	return &MemoryStore{publicURL: publicURL, objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Upload(_ context.Context, content io.Reader, folder, namePrefix string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	mt := mimetype.Detect(data)
	ext := mt.Extension()
	if ext == "" {
		ext = ".bin"
	}
	key := path.Join(string(kindFromMIME(mt.String())), "upload", folder, UniqueName(namePrefix)) + ext

	s.mu.Lock()
	s.objects[key] = memoryObject{data: data, contentType: mt.String()}
	s.mu.Unlock()

	return s.publicURL + "/" + key, nil
}

func (s *MemoryStore) Delete(_ context.Context, url string) {
	if !s.IsManaged(url) {
		return
	}
	identifier, kind, ok := ParseAssetURL(url)
	if !ok {
		return
	}

	kinds := []Kind{kind}
	if kind == KindAuto {
		kinds = []Kind{KindImage, KindVideo, KindRaw}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range kinds {
		prefix := path.Join(string(k), "upload", identifier) + "."
		for key := range s.objects {
			if strings.HasPrefix(key, prefix) {
				delete(s.objects, key)
			}
		}
	}
}

func (s *MemoryStore) IsManaged(url string) bool {
	return hasBase(url, s.publicURL)
}

// Get returns a stored object by its public URL
func (s *MemoryStore) Get(url string) ([]byte, string, bool) {
	if !s.IsManaged(url) {
		return nil, "", false
	}
	return s.Object(url[len(s.publicURL)+1:])
}

// Object returns a stored object by key
func (s *MemoryStore) Object(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.data, obj.contentType, ok
}

// Len is the number of stored objects
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
