package meta

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service loads scripts, pipelines and config documents. Relative locations
// resolve against baseURL and ${env.KEY} expressions are expanded.
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// URL returns the absolute location of URL.
func (s *Service) URL(URL string) string {
	if s.baseURL == "" || !url.IsRelative(URL) {
		return URL
	}
	return url.Join(s.baseURL, URL)
}

// Download returns the expanded content of URL.
func (s *Service) Download(ctx context.Context, URL string) ([]byte, error) {
	location := s.URL(URL)
	data, err := s.fs.DownloadWithURL(ctx, location, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %w", location, err)
	}
	return []byte(expandEnv(string(data))), nil
}

// Load decodes the YAML (or JSON) document at URL into out.
func (s *Service) Load(ctx context.Context, URL string, out interface{}) error {
	data, err := s.Download(ctx, URL)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %v: %w", s.URL(URL), err)
	}
	return nil
}

// New creates a loader; fs defaults to afs.New().
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, baseURL: baseURL, options: options}
}
