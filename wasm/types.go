package wasm

import (
	"fmt"
	"strings"

	"github.com/wasmkit/wasm-codec/errors"
)

// ValType is a WASM value type
type ValType byte

const (
	I32     ValType = ValType(ValI32)
	I64     ValType = ValType(ValI64)
	F32     ValType = ValType(ValF32)
	F64     ValType = ValType(ValF64)
	FuncRef ValType = ValType(ValFuncRef)
	AnyRef  ValType = ValType(ValAnyRef)
)

// IsNum reports whether v is a numeric type.
func (v ValType) IsNum() bool {
	switch v {
	case I32, I64, F32, F64:
		return true
	}
	return false
}

// IsRef reports whether v is a reference type.
func (v ValType) IsRef() bool {
	return v == FuncRef || v == AnyRef
}

func (v ValType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case FuncRef:
		return "funcref"
	case AnyRef:
		return "anyref"
	default:
		return fmt.Sprintf("valtype(%#x)", byte(v))
	}
}

// Limits bounds a table or memory. Max is nil when the upper bound is
// absent, which the binary format treats as unbounded.
type Limits struct {
	Min uint32
	Max *uint32
}

// Bounded reports whether the limits carry an upper bound.
func (l Limits) Bounded() bool {
	return l.Max != nil
}

func (l Limits) String() string {
	if l.Max == nil {
		return fmt.Sprintf("[%d, inf)", l.Min)
	}
	return fmt.Sprintf("[%d, %d]", l.Min, *l.Max)
}

// FuncType is a function signature
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (f FuncType) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> (")
	for i, r := range f.Results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.String())
	}
	b.WriteByte(')')
	return b.String()
}

// GlobalType describes a global variable
type GlobalType struct {
	Content ValType
	Mutable bool
}

func (g GlobalType) String() string {
	if g.Mutable {
		return "var " + g.Content.String()
	}
	return "const " + g.Content.String()
}

// TableType describes a table
type TableType struct {
	Elem   ValType
	Limits Limits
}

func (t TableType) String() string {
	return fmt.Sprintf("table %s %s", t.Limits, t.Elem)
}

// MemoryType describes a linear memory
type MemoryType struct {
	Limits Limits
}

func (m MemoryType) String() string {
	return "memory " + m.Limits.String()
}

// ExternKind enumerates the kinds of importable and exportable entities.
// The enumeration order is func, global, table, memory; the wire description
// tags use a different order, see DescFunc and friends.
type ExternKind byte

const (
	ExternFunc ExternKind = iota
	ExternGlobal
	ExternTable
	ExternMemory
)

func (k ExternKind) String() string {
	switch k {
	case ExternFunc:
		return "func"
	case ExternGlobal:
		return "global"
	case ExternTable:
		return "table"
	case ExternMemory:
		return "memory"
	default:
		return fmt.Sprintf("externkind(%d)", byte(k))
	}
}

// externKindFromDesc converts a wire description tag to an ExternKind.
func externKindFromDesc(tag byte) (ExternKind, bool) {
	switch tag {
	case DescFunc:
		return ExternFunc, true
	case DescTable:
		return ExternTable, true
	case DescMemory:
		return ExternMemory, true
	case DescGlobal:
		return ExternGlobal, true
	}
	return 0, false
}

// descFromExternKind converts an ExternKind to its wire description tag.
func descFromExternKind(k ExternKind) byte {
	switch k {
	case ExternFunc:
		return DescFunc
	case ExternTable:
		return DescTable
	case ExternMemory:
		return DescMemory
	default:
		return DescGlobal
	}
}

// ExternType is a tagged union over the four external types. Exactly the
// field matching Kind is non-nil.
type ExternType struct {
	Kind   ExternKind
	Func   *FuncType
	Global *GlobalType
	Table  *TableType
	Memory *MemoryType
}

// FuncExtern wraps a function type as an extern type.
func FuncExtern(ft FuncType) ExternType {
	return ExternType{Kind: ExternFunc, Func: &ft}
}

// GlobalExtern wraps a global type as an extern type.
func GlobalExtern(gt GlobalType) ExternType {
	return ExternType{Kind: ExternGlobal, Global: &gt}
}

// TableExtern wraps a table type as an extern type.
func TableExtern(tt TableType) ExternType {
	return ExternType{Kind: ExternTable, Table: &tt}
}

// MemoryExtern wraps a memory type as an extern type.
func MemoryExtern(mt MemoryType) ExternType {
	return ExternType{Kind: ExternMemory, Memory: &mt}
}

func (e ExternType) String() string {
	switch e.Kind {
	case ExternFunc:
		if e.Func != nil {
			return "func " + e.Func.String()
		}
	case ExternGlobal:
		if e.Global != nil {
			return "global " + e.Global.String()
		}
	case ExternTable:
		if e.Table != nil {
			return e.Table.String()
		}
	case ExternMemory:
		if e.Memory != nil {
			return e.Memory.String()
		}
	}
	return e.Kind.String()
}

// Import is a raw import entry as decoded from the import section. A func
// import carries a type index into the type section; the other kinds carry
// their type inline.
type Import struct {
	Module  string
	Name    string
	Kind    ExternKind
	TypeIdx uint32
	Global  *GlobalType
	Table   *TableType
	Memory  *MemoryType
}

// Export is a raw export entry. Idx indexes the combined imported-then-
// declared index space of Kind.
type Export struct {
	Name string
	Kind ExternKind
	Idx  uint32
}

// Global is a declared global with its raw initializer expression bytes,
// terminator included.
type Global struct {
	Type GlobalType
	Init []byte
}

// ImportType is a fully resolved import: module, name, and extern type.
type ImportType struct {
	Module string
	Name   string
	Type   ExternType
}

// ExportType is a fully resolved export: name and extern type.
type ExportType struct {
	Name string
	Type ExternType
}

// RawSection keeps a section the codec does not interpret beyond its entry
// count. Payload is the complete section payload, count prefix included, and
// round-trips through Encode verbatim.
type RawSection struct {
	Count   uint32
	Payload []byte
}

// CustomSection is a named custom section with opaque contents
type CustomSection struct {
	Name string
	Data []byte
}

// Module is a decoded WASM module
type Module struct {
	Types          []FuncType
	Imports        []Import
	Funcs          []uint32 // type indices of declared functions
	Tables         []TableType
	Memories       []MemoryType
	Globals        []Global
	Exports        []Export
	Start          *uint32
	Elements       *RawSection
	Code           *RawSection
	Data           *RawSection
	DataCount      *uint32
	CustomSections []CustomSection
}

func (m *Module) countImports(kind ExternKind) int {
	n := 0
	for i := range m.Imports {
		if m.Imports[i].Kind == kind {
			n++
		}
	}
	return n
}

// NumImportedFuncs returns the number of imported functions
func (m *Module) NumImportedFuncs() int { return m.countImports(ExternFunc) }

// NumImportedGlobals returns the number of imported globals
func (m *Module) NumImportedGlobals() int { return m.countImports(ExternGlobal) }

// NumImportedTables returns the number of imported tables
func (m *Module) NumImportedTables() int { return m.countImports(ExternTable) }

// NumImportedMemories returns the number of imported memories
func (m *Module) NumImportedMemories() int { return m.countImports(ExternMemory) }

// importedType resolves the extern type of an import entry. Func imports
// need the type section for resolution.
func (m *Module) importedType(imp *Import) (ExternType, error) {
	switch imp.Kind {
	case ExternFunc:
		if int(imp.TypeIdx) >= len(m.Types) {
			return ExternType{}, errors.IndexOutOfRange(errors.PhaseDecode, "type", int(imp.TypeIdx), len(m.Types))
		}
		return FuncExtern(m.Types[imp.TypeIdx]), nil
	case ExternGlobal:
		return GlobalExtern(*imp.Global), nil
	case ExternTable:
		return TableExtern(*imp.Table), nil
	default:
		return MemoryExtern(*imp.Memory), nil
	}
}

// FuncTypes returns the function index space: imported functions first, in
// import order, then declared functions.
func (m *Module) FuncTypes() ([]FuncType, error) {
	out := make([]FuncType, 0, m.NumImportedFuncs()+len(m.Funcs))
	for i := range m.Imports {
		imp := &m.Imports[i]
		if imp.Kind != ExternFunc {
			continue
		}
		if int(imp.TypeIdx) >= len(m.Types) {
			return nil, errors.IndexOutOfRange(errors.PhaseDecode, "type", int(imp.TypeIdx), len(m.Types))
		}
		out = append(out, m.Types[imp.TypeIdx])
	}
	for _, idx := range m.Funcs {
		if int(idx) >= len(m.Types) {
			return nil, errors.IndexOutOfRange(errors.PhaseDecode, "type", int(idx), len(m.Types))
		}
		out = append(out, m.Types[idx])
	}
	return out, nil
}

// GlobalTypes returns the global index space: imported then declared.
func (m *Module) GlobalTypes() []GlobalType {
	out := make([]GlobalType, 0, m.NumImportedGlobals()+len(m.Globals))
	for i := range m.Imports {
		if m.Imports[i].Kind == ExternGlobal {
			out = append(out, *m.Imports[i].Global)
		}
	}
	for i := range m.Globals {
		out = append(out, m.Globals[i].Type)
	}
	return out
}

// TableTypes returns the table index space: imported then declared.
func (m *Module) TableTypes() []TableType {
	out := make([]TableType, 0, m.NumImportedTables()+len(m.Tables))
	for i := range m.Imports {
		if m.Imports[i].Kind == ExternTable {
			out = append(out, *m.Imports[i].Table)
		}
	}
	out = append(out, m.Tables...)
	return out
}

// MemoryTypes returns the memory index space: imported then declared.
func (m *Module) MemoryTypes() []MemoryType {
	out := make([]MemoryType, 0, m.NumImportedMemories()+len(m.Memories))
	for i := range m.Imports {
		if m.Imports[i].Kind == ExternMemory {
			out = append(out, *m.Imports[i].Memory)
		}
	}
	out = append(out, m.Memories...)
	return out
}

// ImportTypes resolves every import entry to its extern type, in section
// order.
func (m *Module) ImportTypes() ([]ImportType, error) {
	out := make([]ImportType, 0, len(m.Imports))
	for i := range m.Imports {
		imp := &m.Imports[i]
		et, err := m.importedType(imp)
		if err != nil {
			return nil, err
		}
		out = append(out, ImportType{Module: imp.Module, Name: imp.Name, Type: et})
	}
	return out, nil
}

// ExportTypes resolves every export entry to its extern type by looking up
// the export index in the matching index space.
func (m *Module) ExportTypes() ([]ExportType, error) {
	funcs, err := m.FuncTypes()
	if err != nil {
		return nil, err
	}
	globals := m.GlobalTypes()
	tables := m.TableTypes()
	memories := m.MemoryTypes()

	out := make([]ExportType, 0, len(m.Exports))
	for _, exp := range m.Exports {
		var et ExternType
		switch exp.Kind {
		case ExternFunc:
			if int(exp.Idx) >= len(funcs) {
				return nil, errors.IndexOutOfRange(errors.PhaseDecode, "function", int(exp.Idx), len(funcs))
			}
			et = FuncExtern(funcs[exp.Idx])
		case ExternGlobal:
			if int(exp.Idx) >= len(globals) {
				return nil, errors.IndexOutOfRange(errors.PhaseDecode, "global", int(exp.Idx), len(globals))
			}
			et = GlobalExtern(globals[exp.Idx])
		case ExternTable:
			if int(exp.Idx) >= len(tables) {
				return nil, errors.IndexOutOfRange(errors.PhaseDecode, "table", int(exp.Idx), len(tables))
			}
			et = TableExtern(tables[exp.Idx])
		default:
			if int(exp.Idx) >= len(memories) {
				return nil, errors.IndexOutOfRange(errors.PhaseDecode, "memory", int(exp.Idx), len(memories))
			}
			et = MemoryExtern(memories[exp.Idx])
		}
		out = append(out, ExportType{Name: exp.Name, Type: et})
	}
	return out, nil
}
