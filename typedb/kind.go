package typedb

// Kind identifies a primitive member type.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindChar
	KindPointer
	KindStdString
	KindPadding
)

var kindNames = [...]string{
	KindNone:      "none",
	KindBool:      "bool",
	KindInt8:      "int8_t",
	KindUint8:     "uint8_t",
	KindInt16:     "int16_t",
	KindUint16:    "uint16_t",
	KindInt32:     "int32_t",
	KindUint32:    "uint32_t",
	KindInt64:     "int64_t",
	KindUint64:    "uint64_t",
	KindChar:      "char",
	KindPointer:   "pointer",
	KindStdString: "stl-string",
	KindPadding:   "padding",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a type attribute value to a primitive kind. The second
// return is false for user-defined type names.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if Kind(k) != KindNone && n == name {
			return Kind(k), true
		}
	}
	return KindNone, false
}

// FixedSize returns the ABI-independent byte size of the kind, or 0 when the
// size depends on the ABI (pointers and stl-string).
func (k Kind) FixedSize() uint32 {
	switch k {
	case KindBool, KindInt8, KindUint8, KindChar, KindPadding:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32:
		return 4
	case KindInt64, KindUint64:
		return 8
	default:
		return 0
	}
}
