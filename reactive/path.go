package reactive

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const splitCacheSize = 1024

type splitEntry struct {
	path string
	segs []string
}

// splitCache memoizes path splitting. Entries are keyed by hash and verified
// against the full path, so a collision only costs a fresh split.
type splitCache struct {
	mu      sync.RWMutex
	entries map[uint64]splitEntry
}

var paths = &splitCache{entries: map[uint64]splitEntry{}}

func (c *splitCache) split(path string) []string {
	h := xxhash.Sum64String(path)

	c.mu.RLock()
	entry, ok := c.entries[h]
	c.mu.RUnlock()
	if ok && entry.path == path {
		return entry.segs
	}

	segs := strings.Split(path, ".")
	c.mu.Lock()
	if len(c.entries) >= splitCacheSize {
		clear(c.entries)
	}
	c.entries[h] = splitEntry{path: path, segs: segs}
	c.mu.Unlock()
	return segs
}

// maxIndexGap is how far past the end of an array a path may write.
const maxIndexGap = 1024

// container is one level of a path walk.
type container interface {
	get(seg string) (any, bool)
	set(seg string, v any) error
}

type objectNode struct{ o *Object }

func (n objectNode) get(seg string) (any, bool) {
	if !n.o.Has(seg) {
		return nil, false
	}
	return n.o.Get(seg), true
}

func (n objectNode) set(seg string, v any) error {
	n.o.Set(seg, v)
	return nil
}

type arrayNode struct{ a *Array }

func (n arrayNode) get(seg string) (any, bool) {
	i, _ := parseIndex(seg)
	if i >= n.a.Len() {
		return nil, false
	}
	return n.a.Get(i), true
}

func (n arrayNode) set(seg string, v any) error {
	i, _ := parseIndex(seg)
	if err := checkGap(i, len(*n.a.raw)); err != nil {
		return err
	}
	n.a.Set(i, v)
	return nil
}

type rawObject map[string]any

func (n rawObject) get(seg string) (any, bool) {
	v, ok := n[seg]
	return v, ok
}

func (n rawObject) set(seg string, v any) error {
	n[seg] = v
	return nil
}

// rawArray is an unwrapped slice. When it was found as a bare []any, store
// puts the slice back into its parent after it grows, or fails when there is
// no parent to hold it; writes in range go straight to the shared backing array.
type rawArray struct {
	s     *[]any
	store func(s []any) error
}

func (n rawArray) get(seg string) (any, bool) {
	i, _ := parseIndex(seg)
	if i >= len(*n.s) {
		return nil, false
	}
	return (*n.s)[i], true
}

func (n rawArray) set(seg string, v any) error {
	i, _ := parseIndex(seg)
	if i < len(*n.s) {
		(*n.s)[i] = v
		return nil
	}
	if err := checkGap(i, len(*n.s)); err != nil {
		return err
	}
	*n.s = append(*n.s, make([]any, i-len(*n.s)+1)...)
	(*n.s)[i] = v
	if n.store != nil {
		return n.store(*n.s)
	}
	return nil
}

func checkGap(i, n int) error {
	if i > n+maxIndexGap {
		return fmt.Errorf("index %d with length %d: %w", i, n, ErrIndexRange)
	}
	return nil
}

// containerFor returns v as a container that seg can address: objects take
// any segment, arrays only decimal indices.
func containerFor(v any, seg string) container {
	switch x := v.(type) {
	case *Object:
		if x != nil {
			return objectNode{x}
		}
	case map[string]any:
		if x != nil {
			return rawObject(x)
		}
	case *Array:
		if _, ok := parseIndex(seg); ok && x != nil {
			return arrayNode{x}
		}
	case *[]any:
		if _, ok := parseIndex(seg); ok && x != nil {
			return rawArray{s: x}
		}
	case []any:
		if _, ok := parseIndex(seg); ok {
			return rawArray{s: &x, store: func(s []any) error {
				return fmt.Errorf("growing a bare slice to %d: %w", len(s), ErrIndexRange)
			}}
		}
	}
	return nil
}

// childFor is containerFor for the value v found at seg of parent. A bare
// slice keeps its type in the parent, even when it has to grow.
func childFor(parent container, seg string, v any, nextSeg string) container {
	next := containerFor(v, nextSeg)
	if ra, ok := next.(rawArray); ok {
		if _, bare := v.([]any); bare {
			ra.store = func(s []any) error {
				return parent.set(seg, s)
			}
			return ra
		}
	}
	return next
}

func parseIndex(seg string) (int, bool) {
	if seg == "" || len(seg) > 9 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// SetNestedProperty assigns value at a dot separated path inside obj. Every
// intermediate segment whose value cannot hold the next segment is replaced
// with a new empty object, primitives included. When a level is reactive the
// assignment goes through it and triggers like any other write.
//
// Array indices may point past the end, growing the array, but not by more
// than 1024 elements; such paths fail with ErrIndexRange and leave the array
// as it was. A bare []any passed as obj cannot grow either.
func SetNestedProperty(obj any, path string, value any) error {
	if path == "" {
		return ErrEmptyPath
	}
	segs := paths.split(path)

	cur := containerFor(obj, segs[0])
	if cur == nil {
		return fmt.Errorf("setting %q on %T: %w", path, obj, ErrNotContainer)
	}
	for i, seg := range segs[:len(segs)-1] {
		nextSeg := segs[i+1]
		v, _ := cur.get(seg)
		next := childFor(cur, seg, v, nextSeg)
		if next == nil {
			if err := cur.set(seg, map[string]any{}); err != nil {
				return fmt.Errorf("setting %q: %w", path, err)
			}
			v, _ = cur.get(seg)
			next = containerFor(v, nextSeg)
		}
		cur = next
	}
	if err := cur.set(segs[len(segs)-1], value); err != nil {
		return fmt.Errorf("setting %q: %w", path, err)
	}
	return nil
}

// GetNestedProperty reads a dot separated path inside obj, tracking reads on
// reactive levels. It returns fallback, or nil, as soon as a segment is missing.
func GetNestedProperty(obj any, path string, fallback ...any) any {
	var def any
	if len(fallback) > 0 {
		def = fallback[0]
	}
	if path == "" {
		return def
	}

	cur := obj
	for _, seg := range paths.split(path) {
		c := containerFor(cur, seg)
		if c == nil {
			return def
		}
		v, ok := c.get(seg)
		if !ok {
			return def
		}
		cur = v
	}
	return cur
}
