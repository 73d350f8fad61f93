// Package codec implements the binary entry blob format: a compact,
// self-describing encoding of a BibTeX entry's type and (key, value)
// fields. See the format description in entry.go.
package codec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// CurrentVersion is the only version byte this codec accepts today.
const CurrentVersion byte = 0

const (
	// MaxEntryTypeLen is the largest encodable entry-type length.
	MaxEntryTypeLen = 255
	// MaxFieldKeyLen is the largest encodable field-key length.
	MaxFieldKeyLen = 255
	// MaxFieldValueLen is the largest encodable field-value length.
	MaxFieldValueLen = 65535
	// MaxEncodedSize bounds the total size of an encoded blob.
	MaxEncodedSize = 50 * 1024 * 1024
	// MaxFields is the largest number of fields CheckAndInsert accepts.
	// A field at the u8/u16 header limits takes 3+255+65535 bytes, so 760
	// such fields come to about 50 MB.
	MaxFields = 760
)

// InvalidBytesError reports the first invalid byte offset found while
// validating an encoded blob, together with a human-readable reason.
type InvalidBytesError struct {
	Offset  int
	Message string
}

func (e *InvalidBytesError) Error() string {
	return fmt.Sprintf("invalid entry bytes at offset %d: %s", e.Offset, e.Message)
}

func invalid(offset int, format string, args ...any) error {
	return &InvalidBytesError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// excluded holds the separator bytes that are never allowed in an entry
// type or field key, per spec: {}(),= \t\n\#%"
var excluded = [256]bool{
	'{': true, '}': true, '(': true, ')': true, ',': true, '=': true,
	' ': true, '\t': true, '\n': true, '\\': true, '#': true, '%': true, '"': true,
}

// isIdentifierByte reports whether b may appear in an entry type or
// field key: ASCII printable, not a separator, not an uppercase letter.
func isIdentifierByte(b byte) bool {
	if b < 0x20 || b > 0x7e {
		return false
	}
	if excluded[b] {
		return false
	}
	if b >= 'A' && b <= 'Z' {
		return false
	}
	return true
}

// IsValidIdentifier reports whether s satisfies the same ASCII
// identifier predicate used for entry types and field keys: non-empty,
// ASCII printable, excluding "{}(),= \t\n\\#%\"" and uppercase letters.
// Exported so other packages (e.g. provider names) can share the rule.
func IsValidIdentifier(s string) bool {
	return len(s) > 0 && validateIdentifier([]byte(s))
}

func validateIdentifier(b []byte) bool {
	for _, c := range b {
		if !isIdentifierByte(c) {
			return false
		}
	}
	return true
}

// isBalanced reports whether s has balanced, non-negative-depth {}
// nesting, as required of field values.
func isBalanced(s []byte) bool {
	depth := 0
	for _, c := range s {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// Encode serializes e into the version-0 binary format.
func Encode(e *EntryData) ([]byte, error) {
	if !validateIdentifier([]byte(e.entryType)) {
		return nil, fmt.Errorf("entry type %q is not a valid identifier", e.entryType)
	}
	if len(e.entryType) == 0 || len(e.entryType) > MaxEntryTypeLen {
		return nil, fmt.Errorf("entry type length %d out of range", len(e.entryType))
	}

	size := 1 + 1 + len(e.entryType)
	for _, f := range e.fields {
		size += 1 + 2 + len(f.Key) + len(f.Value)
	}
	if size > MaxEncodedSize {
		return nil, fmt.Errorf("encoded entry size %d exceeds maximum %d", size, MaxEncodedSize)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, CurrentVersion)
	buf = append(buf, byte(len(e.entryType)))
	buf = append(buf, e.entryType...)

	for _, f := range e.fields {
		buf = append(buf, byte(len(f.Key)))
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(f.Value)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, f.Key...)
		buf = append(buf, f.Value...)
	}

	return buf, nil
}

// Validate traverses b once, checking every invariant in spec.md §4.1,
// and returns the first InvalidBytesError found, or nil if b is a
// well-formed encoded entry.
func Validate(b []byte) error {
	_, err := decode(b, false)
	return err
}

// Decode parses b into a read-only View. It performs full validation;
// callers that already trust b's provenance may skip the separate
// Validate call.
func Decode(b []byte) (*View, error) {
	return decode(b, true)
}

// decode is the single traversal shared by Validate and Decode.
func decode(b []byte, buildView bool) (*View, error) {
	if len(b) > MaxEncodedSize {
		return nil, invalid(0, "encoded size %d exceeds maximum %d", len(b), MaxEncodedSize)
	}
	if len(b) < 2 {
		return nil, invalid(0, "truncated header")
	}
	if b[0] != CurrentVersion {
		return nil, invalid(0, "unsupported version byte %d", b[0])
	}

	off := 1
	typeLen := int(b[off])
	off++
	if typeLen < 1 {
		return nil, invalid(off-1, "entry type length must be at least 1")
	}
	if off+typeLen > len(b) {
		return nil, invalid(off, "truncated entry type")
	}
	entryType := b[off : off+typeLen]
	if !validateIdentifier(entryType) {
		return nil, invalid(off, "entry type contains an invalid character")
	}
	off += typeLen

	var fields []Field
	if buildView {
		fields = make([]Field, 0, 8)
	}

	var prevKey []byte
	for off < len(b) {
		start := off
		if off+3 > len(b) {
			return nil, invalid(start, "truncated field header")
		}
		keyLen := int(b[off])
		off++
		valLen := int(binary.LittleEndian.Uint16(b[off : off+2]))
		off += 2

		if keyLen < 1 {
			return nil, invalid(start, "field key length must be at least 1")
		}
		if off+keyLen+valLen > len(b) {
			return nil, invalid(start, "truncated field body")
		}
		key := b[off : off+keyLen]
		off += keyLen
		val := b[off : off+valLen]
		off += valLen

		if !validateIdentifier(key) {
			// key itself failed the identifier predicate, so it may hold
			// bytes unsafe to echo verbatim into a diagnostic; report the
			// placeholder stand-in instead of the raw bytes.
			return nil, invalid(start, "field key %s contains an invalid character", PlaceholderKey)
		}
		if prevKey != nil {
			switch compareBytes(prevKey, key) {
			case 0:
				return nil, invalid(start, "duplicate field key %q", key)
			case 1:
				return nil, invalid(start, "field keys are not sorted ascending")
			}
		}
		prevKey = key

		if !utf8.Valid(val) {
			return nil, invalid(start, "field value is not valid UTF-8")
		}
		if !isBalanced(val) {
			return nil, invalid(start, "field value has unbalanced braces")
		}

		if buildView {
			fields = append(fields, Field{Key: string(key), Value: string(val)})
		}
	}

	if !buildView {
		return nil, nil
	}
	return &View{entryType: string(entryType), fields: fields}, nil
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
