// Package nametransform maps a requested filename to the byte sequence each
// target namespace (ISO 9660 at a given interchange level, Joliet, UDF) is
// allowed to store, and resolves collisions between siblings once every
// name in a directory has been transformed.
package nametransform

import (
	"strings"

	"github.com/bgrewell/iso-forge/pkg/consts"
	"github.com/bgrewell/iso-forge/pkg/iso9660/encoding"
)

// InterchangeLevel selects the ISO 9660 name-length and fragmentation rules.
type InterchangeLevel int

const (
	Level1 InterchangeLevel = 1
	Level2 InterchangeLevel = 2
	Level3 InterchangeLevel = 3
	Level1999 InterchangeLevel = 1999
)

// AllowsFragmentation reports whether files larger than consts.ISO_MAX_EXTENT
// may be represented as a multi-extent directory-record chain.
func (l InterchangeLevel) AllowsFragmentation() bool {
	return l == Level3
}

// nameCap returns the maximum byte length of the full "stem.ext" production,
// before any ";1" version suffix, for the given level.
func (l InterchangeLevel) nameCap() int {
	switch l {
	case Level1:
		return consts.ISO9660_LEVEL1_STEM_LEN + 1 + consts.ISO9660_LEVEL1_EXT_LEN
	case Level2, Level3:
		return consts.ISO9660_LEVEL2_NAME_LEN
	case Level1999:
		return consts.ISO9660_1999_NAME_LEN
	default:
		return consts.ISO9660_LEVEL2_NAME_LEN
	}
}

// isDChar reports whether r is a valid ISO 9660 d-character.
func isDChar(r rune) bool {
	return strings.ContainsRune(consts.D_CHARACTERS, r)
}

func filterDChars(s string) string {
	upper := strings.ToUpper(s)
	out := make([]rune, 0, len(upper))
	for _, r := range upper {
		if isDChar(r) {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}

func splitStemExt(name string) (stem, ext string, hasExt bool) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return name, "", false
	}
	return name[:idx], name[idx+1:], true
}

// ISOTransform converts name into its ISO 9660 d-character representation at
// the given interchange level, optionally suffixed with ";1". Directories
// never receive a stem/extension split or a version suffix. The transform is
// total: it never fails and always produces a non-empty byte slice.
func ISOTransform(name string, isDir bool, level InterchangeLevel, includeVersion bool) []byte {
	cap := level.nameCap()

	if isDir {
		filtered := filterDChars(name)
		if len(filtered) > cap {
			filtered = filtered[:cap]
		}
		if filtered == "" {
			filtered = "_"
		}
		return []byte(filtered)
	}

	stem, ext, hasExt := splitStemExt(name)
	stem = filterDChars(stem)
	ext = filterDChars(ext)

	stemCap := cap
	extCap := 0
	if hasExt {
		if level == Level1 {
			stemCap = consts.ISO9660_LEVEL1_STEM_LEN
			extCap = consts.ISO9660_LEVEL1_EXT_LEN
		} else {
			extCap = cap - 1
			if len(ext) > extCap {
				extCap = extCap
			}
			stemCap = cap - 1 - min(len(ext), extCap)
		}
	} else if level == Level1 {
		stemCap = consts.ISO9660_LEVEL1_STEM_LEN
	}

	if len(stem) > stemCap {
		stem = stem[:stemCap]
	}
	if hasExt && len(ext) > extCap {
		ext = ext[:extCap]
	}

	out := stem
	if hasExt {
		out += "." + ext
	}
	if out == "" {
		out = "_"
	}
	if includeVersion {
		out += consts.ISO9660_FILE_VERSION_SUFFIX
	}
	return []byte(out)
}

// ISOTransformLen returns the byte length ISOTransform would produce, without
// allocating the transformed name.
func ISOTransformLen(name string, isDir bool, level InterchangeLevel, includeVersion bool) uint8 {
	return uint8(len(ISOTransform(name, isDir, level, includeVersion)))
}

var jolietFilter = "*/:;?\\"

func filterJolietChars(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if strings.ContainsRune(jolietFilter, r) {
			out = append(out, '_')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}

// JolietTransform converts name into big-endian UCS-2 code units per the
// Joliet supplementary-descriptor rules, optionally suffixed with ";1".
func JolietTransform(name string, isDir bool, longNames bool, includeVersion bool) []byte {
	cap := consts.JOLIET_NAME_LEN_SHORT
	if longNames {
		cap = consts.JOLIET_NAME_LEN_LONG
	}

	filtered := filterJolietChars(name)
	runes := []rune(filtered)

	suffix := ""
	if includeVersion && !isDir {
		suffix = consts.ISO9660_FILE_VERSION_SUFFIX
	}
	budget := cap - len([]rune(suffix))
	if len(runes) > budget {
		runes = runes[:budget]
	}

	return encoding.EncodeUCS2BigEndian(string(runes) + suffix)
}

// JolietTransformLen returns the byte length JolietTransform would produce
// (always even, since it is UCS-2 code units).
func JolietTransformLen(name string, isDir bool, longNames bool, includeVersion bool) uint8 {
	return uint8(len(JolietTransform(name, isDir, longNames, includeVersion)))
}

// UDFTransform converts name into a UDF compressed unicode d-string
// (ECMA-167 1/7.2.12): a one-byte compression id (8 if every code point fits
// in a byte, 16 otherwise) followed by the code units, capped at
// consts.UDF_NAME_LEN_MAX total bytes.
func UDFTransform(name string) []byte {
	runes := []rune(name)

	compact := true
	for _, r := range runes {
		if r > 0xFF {
			compact = false
			break
		}
	}

	var body []byte
	if compact {
		body = make([]byte, len(runes))
		for i, r := range runes {
			body[i] = byte(r)
		}
		maxRunes := consts.UDF_NAME_LEN_MAX - 1
		if len(body) > maxRunes {
			body = body[:maxRunes]
		}
	} else {
		ucs2 := encoding.EncodeUCS2BigEndian(string(runes))
		maxBytes := consts.UDF_NAME_LEN_MAX - 1
		if len(ucs2) > maxBytes {
			ucs2 = ucs2[:maxBytes-(maxBytes%2)]
		}
		body = ucs2
	}

	out := make([]byte, 0, len(body)+1)
	if compact {
		out = append(out, 8)
	} else {
		out = append(out, 16)
	}
	out = append(out, body...)
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
