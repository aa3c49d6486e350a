package host

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/docbridge/model/types"
)

const imageBaseURL = "mem://localhost/docbridge"

// ImageStore keeps image bytes addressed by their sha256 hash. Hashes are
// valid only within the session that stored them.
type ImageStore struct {
	fs      afs.Service
	baseURL string
}

// NewImageStore creates a session scoped store.
func NewImageStore(fs afs.Service, session string) *ImageStore {
	return &ImageStore{fs: fs, baseURL: url.Join(imageBaseURL, session, "images")}
}

func (s *ImageStore) location(hash string) string {
	return url.Join(s.baseURL, hash)
}

// Put stores data and returns its hash.
func (s *ImageStore) Put(ctx context.Context, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	location := s.location(hash)
	if exists, _ := s.fs.Exists(ctx, location); exists {
		return hash, nil
	}
	if err := s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return "", types.NewExecutionError("failed to store image %v: %v", hash, err)
	}
	return hash, nil
}

// Has reports whether hash belongs to this session.
func (s *ImageStore) Has(ctx context.Context, hash string) (bool, error) {
	return s.fs.Exists(ctx, s.location(hash))
}

// Get returns stored bytes or NotFound.
func (s *ImageStore) Get(ctx context.Context, hash string) ([]byte, error) {
	if ok, _ := s.Has(ctx, hash); !ok {
		return nil, types.NewNotFoundError("image %v", hash)
	}
	return s.fs.DownloadWithURL(ctx, s.location(hash))
}

// Hashes lists stored hashes, sorted.
func (s *ImageStore) Hashes(ctx context.Context) ([]string, error) {
	if exists, _ := s.fs.Exists(ctx, s.baseURL); !exists {
		return nil, nil
	}
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(false))
	if err != nil {
		return nil, err
	}
	var ret []string
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		ret = append(ret, object.Name())
	}
	sort.Strings(ret)
	return ret, nil
}

// Reset drops every stored image.
func (s *ImageStore) Reset(ctx context.Context) error {
	if exists, _ := s.fs.Exists(ctx, s.baseURL); !exists {
		return nil
	}
	return s.fs.Delete(ctx, s.baseURL)
}
