package evaluation

import (
	"sort"

	"github.com/spboyer/napr/internal/classifier"
)

// Entry is one named classifier in a Registry.
type Entry struct {
	Name       string
	Classifier classifier.Classifier
}

// Registry is an ordered set of named classifiers. Names are unique; adding
// an existing name replaces that entry's classifier in place.
type Registry struct {
	entries []Entry
	index   map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Single registers c under its type name.
func Single(c classifier.Classifier) *Registry {
	return FromList([]classifier.Classifier{c})
}

// FromList registers each classifier under its type name. Classifiers of the
// same type collide: the later one replaces the earlier one at the earlier
// position.
func FromList(cs []classifier.Classifier) *Registry {
	r := NewRegistry()
	for _, c := range cs {
		r.Add(classifier.TypeName(c), c)
	}
	return r
}

// FromMap registers classifiers under the caller's names, in sorted name order.
func FromMap(m map[string]classifier.Classifier) *Registry {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	r := NewRegistry()
	for _, name := range names {
		r.Add(name, m[name])
	}
	return r
}

// Add registers c under name.
func (r *Registry) Add(name string, c classifier.Classifier) *Registry {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.entries[i].Classifier = c
		return r
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, Entry{Name: name, Classifier: c})
	return r
}

// Len returns the number of entries. A nil registry is empty.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Entries returns the entries in evaluation order.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	return append([]Entry(nil), r.entries...)
}

// Names returns entry names in evaluation order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.Len())
	for _, e := range r.Entries() {
		names = append(names, e.Name)
	}
	return names
}

// Get returns the classifier registered under name.
func (r *Registry) Get(name string) (classifier.Classifier, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].Classifier, true
}
