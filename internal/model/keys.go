package model

import (
	"strings"
	"unicode"
)

// KeyAllocator issues keys that are unique within the allocator. A key
// that was issued before gets a suffix "_<letters>" where the letters come
// from one odometer shared by all keys: a, b, ..., z, aa, ab, ... The
// counter never resets, so a second collision of the same base key yields
// "_b" rather than "_a" again, and a collision of another key continues
// where the last one stopped.
type KeyAllocator struct {
	issued  map[string]bool
	counter []byte
}

func NewKeyAllocator() *KeyAllocator {
	return &KeyAllocator{issued: make(map[string]bool)}
}

// EnsureUniqueness returns candidate if it has not been issued yet,
// otherwise the first suffixed variant that has not. The returned key is
// recorded as issued.
func (a *KeyAllocator) EnsureUniqueness(candidate string) string {
	if a.issued == nil {
		a.issued = make(map[string]bool)
	}
	key := candidate
	for a.issued[key] {
		a.increment()
		key = candidate + "_" + string(a.counter)
	}
	a.issued[key] = true
	return key
}

// Issued reports whether key was handed out before.
func (a *KeyAllocator) Issued(key string) bool {
	return a.issued[key]
}

// increment advances the odometer. The last letter is least significant.
func (a *KeyAllocator) increment() {
	for i := len(a.counter) - 1; i >= 0; i-- {
		if a.counter[i] < 'z' {
			a.counter[i]++
			return
		}
		a.counter[i] = 'a'
	}
	a.counter = append([]byte{'a'}, a.counter...)
}

// KeyFromName derives a key candidate from a display name: lower case,
// runs of anything but letters and digits collapsed to "-".
func KeyFromName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
