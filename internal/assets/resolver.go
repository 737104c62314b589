package assets

import "errors"

// Resolver tries a custom directory first and falls back to embedded styles
// when the style is not found there.
type Resolver struct {
	custom   StyleLoader // nil without a custom directory
	embedded StyleLoader
}

// NewResolver creates a Resolver. An empty customBasePath uses embedded
// styles only.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadStyle implements StyleLoader. Only not-found errors fall back.
func (r *Resolver) LoadStyle(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadStyle(name)
	}
	content, err := r.custom.LoadStyle(name)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, ErrStyleNotFound) {
		return "", err
	}
	return r.embedded.LoadStyle(name)
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

var _ StyleLoader = (*Resolver)(nil)
