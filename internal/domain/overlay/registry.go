package overlay

// Registry remembers the real URL of every alert source seen so far.
type Registry struct {
	urls map[string]string
}

// NewRegistry creates a registry from a name to stored URL map.
func NewRegistry(urls map[string]string) *Registry {
	r := &Registry{urls: make(map[string]string, len(urls))}
	for name, u := range urls {
		r.urls[name] = u
	}

	return r
}

// Lookup returns the remembered source, if any.
func (r *Registry) Lookup(name string) (Source, bool) {
	u, ok := r.urls[name]
	if !ok {
		return Source{}, false
	}

	return Source{Name: name, StoredURL: u}, true
}

// Remember records a newly captured source. An existing URL is never overwritten.
func (r *Registry) Remember(source Source) bool {
	if _, ok := r.urls[source.Name]; ok {
		return false
	}

	r.urls[source.Name] = source.StoredURL

	return true
}

// URLs returns a copy of the name to stored URL map.
func (r *Registry) URLs() map[string]string {
	out := make(map[string]string, len(r.urls))
	for name, u := range r.urls {
		out[name] = u
	}

	return out
}
