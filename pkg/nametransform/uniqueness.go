package nametransform

import "fmt"

// unit is the byte width of one "character" in the namespace being
// disambiguated: 1 for ISO 9660 d-characters, 2 for Joliet UCS-2 code units.
type unit int

const (
	UnitASCII unit = 1
	UnitUCS2  unit = 2
)

// Resolver runs the per-namespace sibling-uniqueness pass described in
// spec.md §4.2: once every sibling in a directory has been transformed, any
// two names that share the same pre-suffix stem are disambiguated by
// overwriting the trailing 1-3 characters of the stem with a counter. The
// first frozen name in a directory always wins; a Resolver is scoped to one
// directory's one namespace.
type Resolver struct {
	unit  unit
	seen  map[string]bool
}

// NewResolver creates a uniqueness resolver for one directory's namespace.
// unit selects whether disambiguation counters are written as single ASCII
// bytes or as 2-byte UCS-2 code units.
func NewResolver(u unit) *Resolver {
	return &Resolver{unit: u, seen: make(map[string]bool)}
}

// Resolve freezes name (full transformed bytes, including any version
// suffix) against the siblings already frozen by this resolver. suffixLen is
// the byte length of the trailing version suffix, if any (0 otherwise). It
// returns the frozen bytes and whether a collision warning should be
// reported (the stem is shorter than four bytes, or the 255-attempt counter
// was exhausted).
func (r *Resolver) Resolve(name []byte, suffixLen int) (frozen []byte, warn bool) {
	stemLen := len(name) - suffixLen
	if stemLen < 0 {
		stemLen = len(name)
		suffixLen = 0
	}
	stem := append([]byte(nil), name[:stemLen]...)
	suffix := name[stemLen:]

	key := string(stem)
	if !r.seen[key] {
		r.seen[key] = true
		return name, false
	}

	// Names shorter than four bytes before the suffix cannot be
	// disambiguated; accept the collision as-is.
	if stemLen < 4 {
		return name, true
	}

	for counter := 1; counter <= 255; counter++ {
		digits := counterDigits(counter)
		nDigitChars := len(digits)
		nBytes := nDigitChars * int(r.unit)
		if nBytes > stemLen {
			continue
		}

		candidate := append([]byte(nil), stem...)
		r.writeCounter(candidate[stemLen-nBytes:], digits)

		candidateKey := string(candidate)
		if r.seen[candidateKey] {
			continue
		}

		r.seen[candidateKey] = true
		out := append(candidate, suffix...)
		return out, false
	}

	// Exhausted the counter space; keep the original (colliding) name and
	// surface the warning to the caller.
	return name, true
}

// writeCounter writes the ASCII digits into dst, packing each digit as a
// single byte for UnitASCII or as a big-endian UCS-2 code unit for UnitUCS2.
func (r *Resolver) writeCounter(dst []byte, digits string) {
	if r.unit == UnitASCII {
		copy(dst, digits)
		return
	}
	for i, d := range digits {
		dst[2*i] = 0
		dst[2*i+1] = byte(d)
	}
}

func counterDigits(n int) string {
	return fmt.Sprintf("%d", n)
}
