package wasm

import (
	"github.com/wasmkit/wasm-codec/errors"
	"github.com/wasmkit/wasm-codec/wasm/internal/binary"
)

// Encode serializes the module back to binary form. Sections are emitted in
// the required order with minimal-length varints, so a decode/encode round
// trip canonicalizes any non-minimal size fields in the input. Custom
// sections are appended after the known sections.
func (m *Module) Encode() ([]byte, error) {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	if len(m.Types) > 0 {
		writeSection(w, SectionType, func(sw *binary.Writer) {
			sw.WriteU32(uint32(len(m.Types)))
			for _, ft := range m.Types {
				writeFuncType(sw, ft)
			}
		})
	}

	if len(m.Imports) > 0 {
		writeSection(w, SectionImport, func(sw *binary.Writer) {
			sw.WriteU32(uint32(len(m.Imports)))
			for i := range m.Imports {
				writeImport(sw, &m.Imports[i])
			}
		})
	}

	if len(m.Funcs) > 0 {
		writeSection(w, SectionFunction, func(sw *binary.Writer) {
			sw.WriteU32(uint32(len(m.Funcs)))
			for _, idx := range m.Funcs {
				sw.WriteU32(idx)
			}
		})
	}

	if len(m.Tables) > 0 {
		writeSection(w, SectionTable, func(sw *binary.Writer) {
			sw.WriteU32(uint32(len(m.Tables)))
			for _, tt := range m.Tables {
				writeTableType(sw, tt)
			}
		})
	}

	if len(m.Memories) > 0 {
		writeSection(w, SectionMemory, func(sw *binary.Writer) {
			sw.WriteU32(uint32(len(m.Memories)))
			for _, mt := range m.Memories {
				writeLimits(sw, mt.Limits)
			}
		})
	}

	if len(m.Globals) > 0 {
		for i := range m.Globals {
			if err := checkInitExpr(m.Globals[i].Init); err != nil {
				return nil, err
			}
		}
		writeSection(w, SectionGlobal, func(sw *binary.Writer) {
			sw.WriteU32(uint32(len(m.Globals)))
			for i := range m.Globals {
				writeGlobalType(sw, m.Globals[i].Type)
				sw.WriteBytes(m.Globals[i].Init)
			}
		})
	}

	if len(m.Exports) > 0 {
		writeSection(w, SectionExport, func(sw *binary.Writer) {
			sw.WriteU32(uint32(len(m.Exports)))
			for _, exp := range m.Exports {
				sw.WriteName(exp.Name)
				sw.Byte(descFromExternKind(exp.Kind))
				sw.WriteU32(exp.Idx)
			}
		})
	}

	if m.Start != nil {
		writeSection(w, SectionStart, func(sw *binary.Writer) {
			sw.WriteU32(*m.Start)
		})
	}

	if m.Elements != nil {
		writeRawSection(w, SectionElement, m.Elements)
	}
	if m.DataCount != nil {
		writeSection(w, SectionDataCount, func(sw *binary.Writer) {
			sw.WriteU32(*m.DataCount)
		})
	}
	if m.Code != nil {
		writeRawSection(w, SectionCode, m.Code)
	}
	if m.Data != nil {
		writeRawSection(w, SectionData, m.Data)
	}

	for _, cs := range m.CustomSections {
		writeSection(w, SectionCustom, func(sw *binary.Writer) {
			sw.WriteName(cs.Name)
			sw.WriteBytes(cs.Data)
		})
	}

	return w.Bytes(), nil
}

// writeSection emits an id byte, the payload size as a minimal varint, and
// the payload produced by fill.
func writeSection(w *binary.Writer, id byte, fill func(*binary.Writer)) {
	sw := binary.NewWriter()
	fill(sw)
	w.Byte(id)
	w.WriteU32(uint32(sw.Len()))
	w.WriteBytes(sw.Bytes())
}

func writeRawSection(w *binary.Writer, id byte, s *RawSection) {
	w.Byte(id)
	w.WriteU32(uint32(len(s.Payload)))
	w.WriteBytes(s.Payload)
}

func writeValTypes(w *binary.Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, vt := range types {
		w.Byte(byte(vt))
	}
}

func writeImport(w *binary.Writer, imp *Import) {
	w.WriteName(imp.Module)
	w.WriteName(imp.Name)
	w.Byte(descFromExternKind(imp.Kind))
	switch imp.Kind {
	case ExternFunc:
		w.WriteU32(imp.TypeIdx)
	case ExternTable:
		writeTableType(w, *imp.Table)
	case ExternMemory:
		writeLimits(w, imp.Memory.Limits)
	case ExternGlobal:
		writeGlobalType(w, *imp.Global)
	}
}

func writeFuncType(w *binary.Writer, ft FuncType) {
	w.Byte(FuncTypeTag)
	writeValTypes(w, ft.Params)
	writeValTypes(w, ft.Results)
}

func writeLimits(w *binary.Writer, l Limits) {
	if l.Max != nil {
		w.Byte(LimitsHasMax)
		w.WriteU32(l.Min)
		w.WriteU32(*l.Max)
	} else {
		w.Byte(LimitsNoMax)
		w.WriteU32(l.Min)
	}
}

func writeTableType(w *binary.Writer, tt TableType) {
	w.Byte(byte(tt.Elem))
	writeLimits(w, tt.Limits)
}

func writeGlobalType(w *binary.Writer, gt GlobalType) {
	w.Byte(byte(gt.Content))
	if gt.Mutable {
		w.Byte(MutVar)
	} else {
		w.Byte(MutConst)
	}
}

// checkInitExpr rejects initializer bytes that cannot have come from
// readInitExpr.
func checkInitExpr(init []byte) error {
	if len(init) < 2 || init[len(init)-1] != OpEnd {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInitExpr).
			Detail("initializer must be a const instruction terminated by end").
			Build()
	}
	return nil
}
