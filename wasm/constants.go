package wasm

// Binary format constants
const (
	// Magic is the WASM binary magic number "\0asm" read as little-endian u32
	Magic uint32 = 0x6D736100
	// Version is the WASM binary format version
	Version uint32 = 0x01
	// HeaderSize is the byte length of magic plus version
	HeaderSize = 8
)

// Section IDs
const (
	SectionCustom    byte = 0
	SectionType      byte = 1
	SectionImport    byte = 2
	SectionFunction  byte = 3
	SectionTable     byte = 4
	SectionMemory    byte = 5
	SectionGlobal    byte = 6
	SectionExport    byte = 7
	SectionStart     byte = 8
	SectionElement   byte = 9
	SectionCode      byte = 10
	SectionData      byte = 11
	SectionDataCount byte = 12
)

// sectionName maps a section id to its conventional name for error messages
// and display.
func sectionName(id byte) string {
	switch id {
	case SectionCustom:
		return "custom"
	case SectionType:
		return "type"
	case SectionImport:
		return "import"
	case SectionFunction:
		return "function"
	case SectionTable:
		return "table"
	case SectionMemory:
		return "memory"
	case SectionGlobal:
		return "global"
	case SectionExport:
		return "export"
	case SectionStart:
		return "start"
	case SectionElement:
		return "element"
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	case SectionDataCount:
		return "data count"
	default:
		return "unknown"
	}
}

// Import/export description tags as they appear on the wire. Note that the
// wire order (func, table, memory, global) differs from the ExternKind
// enumeration order; externKindFromDesc and descFromExternKind convert.
const (
	DescFunc   byte = 0x00
	DescTable  byte = 0x01
	DescMemory byte = 0x02
	DescGlobal byte = 0x03
)

// Value type encodings
const (
	ValI32     byte = 0x7F
	ValI64     byte = 0x7E
	ValF32     byte = 0x7D
	ValF64     byte = 0x7C
	ValFuncRef byte = 0x70
	ValAnyRef  byte = 0x6F
)

// FuncTypeTag prefixes every function type in the type section
const FuncTypeTag byte = 0x60

// Limits flags. Only the presence of a maximum is understood; any other
// flag byte is rejected.
const (
	LimitsNoMax  byte = 0x00
	LimitsHasMax byte = 0x01
)

// Mutability flags for global types
const (
	MutConst byte = 0x00
	MutVar   byte = 0x01
)

// Opcodes permitted in constant initializer expressions
const (
	OpGlobalGet byte = 0x23
	OpI32Const  byte = 0x41
	OpI64Const  byte = 0x42
	OpF32Const  byte = 0x43
	OpF64Const  byte = 0x44
	OpRefNull   byte = 0xD0
	OpRefFunc   byte = 0xD2
	OpEnd       byte = 0x0B
)
