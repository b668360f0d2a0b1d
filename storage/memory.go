package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
)

// MemoryUploader keeps objects in memory. Used by tests and the memory
// storage driver.
type MemoryUploader struct {
	mu      sync.Mutex
	base    *url.URL
	objects map[string]memoryObject
}

type memoryObject struct {
	contentType string
	data        []byte
}

func NewMemoryUploader(publicBaseURL string) (*MemoryUploader, error) {
	base, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid public base URL %q: %w", publicBaseURL, err)
	}
	return &MemoryUploader{base: base, objects: make(map[string]memoryObject)}, nil
}

func (u *MemoryUploader) Upload(_ context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	u.mu.Lock()
	u.objects[key] = memoryObject{contentType: contentType, data: data}
	u.mu.Unlock()
	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *MemoryUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	delete(u.objects, key)
	u.mu.Unlock()
	return nil
}

func (u *MemoryUploader) GetPublicURL(key string) string {
	return publicURL(u.base, key)
}

// Object returns a stored object's bytes and content type.
func (u *MemoryUploader) Object(key string) ([]byte, string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	obj, ok := u.objects[key]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(obj.data), obj.contentType, true
}
