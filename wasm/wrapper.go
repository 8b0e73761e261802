package wasm

import (
	"fmt"

	"github.com/wasmkit/wasm-codec/wasm/internal/binary"
)

// FuncWrapperSize is the exact byte length of the module FuncWrapper
// produces for ft.
func FuncWrapperSize(ft FuncType) int {
	return 39 + len(ft.Params) + len(ft.Results)
}

// GlobalWrapperSize is the exact byte length of the module GlobalWrapper
// produces for gt.
func GlobalWrapperSize(gt GlobalType) int {
	return 25 + zeroSize(gt.Content)
}

// FuncWrapper synthesizes a minimal valid module that imports a single
// function with signature ft under empty module and field names and
// re-exports it under the empty name. Patchable fields use fixed five-byte
// varints so a host can rewrite them in place.
//
// The output length always equals FuncWrapperSize(ft); a mismatch is a bug
// in the synthesizer and panics.
func FuncWrapper(ft FuncType) []byte {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	// Type section: one func type, with patchable section and vector sizes.
	w.Byte(SectionType)
	w.WriteSize32(uint32(2 + 2*binary.Size32Len + len(ft.Params) + len(ft.Results)))
	w.WriteU32(1)
	w.Byte(FuncTypeTag)
	w.WriteSize32(uint32(len(ft.Params)))
	for _, p := range ft.Params {
		w.Byte(byte(p))
	}
	w.WriteSize32(uint32(len(ft.Results)))
	for _, r := range ft.Results {
		w.Byte(byte(r))
	}

	// Import section: func "" "" (type 0).
	w.Byte(SectionImport)
	w.WriteU32(5)
	w.WriteU32(1)
	w.WriteName("")
	w.WriteName("")
	w.Byte(DescFunc)
	w.WriteU32(0)

	writeWrapperExport(w, DescFunc)

	out := w.Bytes()
	if len(out) != FuncWrapperSize(ft) {
		panic(fmt.Sprintf("wasm: func wrapper for %s is %d bytes, want %d", ft, len(out), FuncWrapperSize(ft)))
	}
	return out
}

// GlobalWrapper synthesizes a minimal valid module that declares a single
// global of type gt initialized to zero and exports it under the empty name.
//
// The output length always equals GlobalWrapperSize(gt); a mismatch panics.
func GlobalWrapper(gt GlobalType) []byte {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	// Global section with a patchable section size.
	w.Byte(SectionGlobal)
	w.WriteSize32(uint32(5 + zeroSize(gt.Content)))
	w.WriteU32(1)
	writeGlobalType(w, gt)
	writeZeroInit(w, gt.Content)
	w.Byte(OpEnd)

	writeWrapperExport(w, DescGlobal)

	out := w.Bytes()
	if len(out) != GlobalWrapperSize(gt) {
		panic(fmt.Sprintf("wasm: global wrapper for %s is %d bytes, want %d", gt, len(out), GlobalWrapperSize(gt)))
	}
	return out
}

// writeWrapperExport emits an export section exporting index 0 of the given
// description kind under the empty name.
func writeWrapperExport(w *binary.Writer, desc byte) {
	w.Byte(SectionExport)
	w.WriteU32(4)
	w.WriteU32(1)
	w.WriteName("")
	w.Byte(desc)
	w.WriteU32(0)
}

// zeroSize is the immediate length of the zero initializer instruction for
// a value type. Reference types carry a one-byte heap type after ref.null.
func zeroSize(vt ValType) int {
	switch vt {
	case F32:
		return 4
	case F64:
		return 8
	default:
		return 1
	}
}

// writeZeroInit emits the zero constant instruction for a value type,
// without the end opcode.
func writeZeroInit(w *binary.Writer, vt ValType) {
	switch vt {
	case I32:
		w.Byte(OpI32Const)
		w.WriteS32(0)
	case I64:
		w.Byte(OpI64Const)
		w.WriteS64(0)
	case F32:
		w.Byte(OpF32Const)
		w.WriteBytes(make([]byte, 4))
	case F64:
		w.Byte(OpF64Const)
		w.WriteBytes(make([]byte, 8))
	default:
		w.Byte(OpRefNull)
		w.Byte(byte(vt))
	}
}
