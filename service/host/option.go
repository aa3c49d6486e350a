package host

import (
	"github.com/viant/afs"
)

type Option func(e *Executor)

// WithFontLoader sets the loader used to prepare text fonts.
func WithFontLoader(loader FontLoader) Option {
	return func(e *Executor) {
		e.fontLoader = loader
	}
}

// WithSession sets the session id scoping image hashes.
func WithSession(session string) Option {
	return func(e *Executor) {
		e.session = session
	}
}

// WithFileSystem sets the afs service backing the image store.
func WithFileSystem(fs afs.Service) Option {
	return func(e *Executor) {
		e.fs = fs
	}
}

// WithPageName sets the name of the page root.
func WithPageName(name string) Option {
	return func(e *Executor) {
		e.pageName = name
	}
}
