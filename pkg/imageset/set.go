package imageset

import (
	"fmt"
	"image"
	"sort"
	"strings"
)

// ErrNoSuchImage is returned when a requested image name has no provider in
// the current cycle or among the shared providers.
var ErrNoSuchImage = fmt.Errorf("no such image")

// Set is one cycle's named images.
type Set struct {
	// Number is the 1-based cycle number.
	Number int
	// Keys holds the metadata key/value pairs identifying this image set.
	Keys map[string]string

	providers []Provider
	list      *List
}

// AddProvider registers a provider with this cycle. The first provider
// registered under a name wins on lookup.
func (s *Set) AddProvider(p Provider) {
	s.providers = append(s.providers, p)
}

// Add registers an in-memory image under a name.
func (s *Set) Add(name string, pixels image.Image) {
	s.AddProvider(NewMemoryProvider(name, FromMemory(pixels)))
}

// Providers returns the providers registered with this cycle.
func (s *Set) Providers() []Provider {
	return s.providers
}

// Image resolves a named image: the cycle's own providers first, then the
// run-wide shared providers.
func (s *Set) Image(name string) (*Image, error) {
	for _, p := range s.providers {
		if p.Name() == name {
			return p.Provide()
		}
	}
	if s.list != nil {
		if p := s.list.sharedProvider(name); p != nil {
			return p.Provide()
		}
	}
	return nil, fmt.Errorf("%w %q (available: %s)", ErrNoSuchImage, name, strings.Join(s.Names(), ", "))
}

// Names returns the sorted image names visible to this cycle.
func (s *Set) Names() []string {
	seen := map[string]struct{}{}
	var names []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, p := range s.providers {
		add(p.Name())
	}
	if s.list != nil {
		for _, p := range s.list.shared {
			add(p.Name())
		}
	}
	sort.Strings(names)
	return names
}

// ReleaseAll releases the cycle's own providers. Shared providers are left
// alone; they serve later cycles.
func (s *Set) ReleaseAll() {
	for _, p := range s.providers {
		p.Release()
	}
}

// List is the run-wide collection of image sets plus the shared providers
// visible to every cycle.
type List struct {
	sets   map[int]*Set
	shared []Provider
}

// NewList creates an empty image-set list.
func NewList() *List {
	return &List{sets: make(map[int]*Set)}
}

// Set returns the image set for the given cycle number, creating it on first
// access.
func (l *List) Set(number int) *Set {
	if number < 1 {
		number = 1
	}
	if s, ok := l.sets[number]; ok {
		return s
	}
	s := &Set{Number: number, Keys: make(map[string]string), list: l}
	l.sets[number] = s
	return s
}

// Count returns the number of image sets created so far.
func (l *List) Count() int {
	return len(l.sets)
}

// AddSharedProvider registers a provider visible to every cycle. Registering
// the same name again replaces the previous provider, so a re-run of a
// one-shot module is idempotent.
func (l *List) AddSharedProvider(p Provider) {
	for i, existing := range l.shared {
		if existing.Name() == p.Name() {
			l.shared[i] = p
			return
		}
	}
	l.shared = append(l.shared, p)
}

// SharedProviders returns the run-wide providers.
func (l *List) SharedProviders() []Provider {
	return l.shared
}

func (l *List) sharedProvider(name string) Provider {
	for _, p := range l.shared {
		if p.Name() == name {
			return p
		}
	}
	return nil
}
