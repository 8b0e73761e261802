package wasm

import (
	"go.uber.org/zap"

	"github.com/wasmkit/wasm-codec/errors"
	"github.com/wasmkit/wasm-codec/wasm/internal/binary"
)

// ParseModule decodes a complete WASM binary module in a single pass. It
// verifies the magic and version, enforces section ordering, checks every
// section's declared size against the bytes its contents consume, and checks
// the cross-section count invariants (function vs code, data count vs data).
//
// Element, code and data section contents are kept raw: only their entry
// counts are read. Everything else is fully decoded.
func ParseModule(data []byte) (*Module, error) {
	if len(data) < HeaderSize {
		return nil, errors.UnexpectedEnd(errors.PhaseDecode, len(data))
	}

	r := binary.NewReader(data)
	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidMagic).
			Detail("got %#08x, want %#08x", magic, Magic).
			Build()
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidVersion).
			Detail("got %d, want %d", version, Version).
			Build()
	}

	m := &Module{}
	lastRank := 0

	for r.Remaining() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, errors.New(errors.PhaseDecode, errors.KindUnexpectedEnd).
				Section(sectionName(id)).
				Offset(r.Position()).
				Detail("section extends past end of module").
				Build()
		}

		if id != SectionCustom {
			rank, ok := sectionRank(id)
			if !ok {
				return nil, errors.InvalidByte(errors.PhaseDecode, errors.KindUnknownSection, r.Position(), id)
			}
			if rank == lastRank {
				return nil, errors.New(errors.PhaseDecode, errors.KindDuplicateSection).
					Section(sectionName(id)).
					Build()
			}
			if rank < lastRank {
				return nil, errors.New(errors.PhaseDecode, errors.KindSectionOrder).
					Section(sectionName(id)).
					Build()
			}
			lastRank = rank
		}

		if err := m.parseSection(id, payload); err != nil {
			return nil, err
		}
		logger().Debug("parsed section",
			zap.String("section", sectionName(id)),
			zap.Uint32("size", size))
	}

	codeCount := uint32(0)
	if m.Code != nil {
		codeCount = m.Code.Count
	}
	if codeCount != uint32(len(m.Funcs)) {
		return nil, errors.New(errors.PhaseDecode, errors.KindInconsistentLengths).
			Detail("function count %d, code count %d", len(m.Funcs), codeCount).
			Build()
	}
	if m.DataCount != nil {
		dataCount := uint32(0)
		if m.Data != nil {
			dataCount = m.Data.Count
		}
		if *m.DataCount != dataCount {
			return nil, errors.New(errors.PhaseDecode, errors.KindDataCountMismatch).
				Detail("declared %d, data section has %d", *m.DataCount, dataCount).
				Build()
		}
	}

	return m, nil
}

// sectionRank returns a section's position in the required ordering. The
// data count section sits between element and code.
func sectionRank(id byte) (int, bool) {
	switch id {
	case SectionType, SectionImport, SectionFunction, SectionTable,
		SectionMemory, SectionGlobal, SectionExport, SectionStart,
		SectionElement:
		return int(id), true
	case SectionDataCount:
		return 10, true
	case SectionCode:
		return 11, true
	case SectionData:
		return 12, true
	}
	return 0, false
}

// parseSection decodes one section payload into m and enforces that the
// declared size matches the bytes consumed.
func (m *Module) parseSection(id byte, payload []byte) error {
	sr := binary.NewReader(payload)
	var err error

	switch id {
	case SectionCustom:
		err = m.parseCustomSection(sr)
	case SectionType:
		err = m.parseTypeSection(sr)
	case SectionImport:
		err = m.parseImportSection(sr)
	case SectionFunction:
		err = m.parseFunctionSection(sr)
	case SectionTable:
		err = m.parseTableSection(sr)
	case SectionMemory:
		err = m.parseMemorySection(sr)
	case SectionGlobal:
		err = m.parseGlobalSection(sr)
	case SectionExport:
		err = m.parseExportSection(sr)
	case SectionStart:
		err = m.parseStartSection(sr)
	case SectionElement:
		m.Elements, err = parseRawSection(sr, payload)
		return wrapSectionErr(err, id)
	case SectionCode:
		m.Code, err = parseRawSection(sr, payload)
		return wrapSectionErr(err, id)
	case SectionData:
		m.Data, err = parseRawSection(sr, payload)
		return wrapSectionErr(err, id)
	case SectionDataCount:
		err = m.parseDataCountSection(sr)
	}
	if err != nil {
		return wrapSectionErr(err, id)
	}

	if sr.Remaining() != 0 {
		return errors.SectionSizeMismatch(sectionName(id), len(payload), sr.Position())
	}
	return nil
}

func wrapSectionErr(err error, id byte) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*errors.Error); ok && e.Section == "" {
		e.Section = sectionName(id)
	}
	return err
}

func (m *Module) parseCustomSection(sr *binary.Reader) error {
	name, err := sr.ReadName()
	if err != nil {
		return err
	}
	data, err := sr.ReadRemaining()
	if err != nil {
		return err
	}
	m.CustomSections = append(m.CustomSections, CustomSection{Name: name, Data: data})
	return nil
}

func (m *Module) parseTypeSection(sr *binary.Reader) error {
	count, err := sr.ReadU32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	m.Types = make([]FuncType, 0, count)
	for i := uint32(0); i < count; i++ {
		ft, err := readFuncType(sr)
		if err != nil {
			return err
		}
		m.Types = append(m.Types, ft)
	}
	return nil
}

func (m *Module) parseImportSection(sr *binary.Reader) error {
	count, err := sr.ReadU32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	m.Imports = make([]Import, 0, count)
	for i := uint32(0); i < count; i++ {
		imp := Import{}
		if imp.Module, err = sr.ReadName(); err != nil {
			return err
		}
		if imp.Name, err = sr.ReadName(); err != nil {
			return err
		}
		tag, err := sr.ReadByte()
		if err != nil {
			return err
		}
		kind, ok := externKindFromDesc(tag)
		if !ok {
			return errors.InvalidByte(errors.PhaseDecode, errors.KindInvalidKindTag, sr.Position(), tag)
		}
		imp.Kind = kind

		switch kind {
		case ExternFunc:
			if imp.TypeIdx, err = sr.ReadU32(); err != nil {
				return err
			}
		case ExternTable:
			tt, err := readTableType(sr)
			if err != nil {
				return err
			}
			imp.Table = &tt
		case ExternMemory:
			mt, err := readMemoryType(sr)
			if err != nil {
				return err
			}
			imp.Memory = &mt
		case ExternGlobal:
			gt, err := readGlobalType(sr)
			if err != nil {
				return err
			}
			imp.Global = &gt
		}
		m.Imports = append(m.Imports, imp)
	}
	return nil
}

func (m *Module) parseFunctionSection(sr *binary.Reader) error {
	count, err := sr.ReadU32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	m.Funcs = make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		idx, err := sr.ReadU32()
		if err != nil {
			return err
		}
		m.Funcs = append(m.Funcs, idx)
	}
	return nil
}

func (m *Module) parseTableSection(sr *binary.Reader) error {
	count, err := sr.ReadU32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	m.Tables = make([]TableType, 0, count)
	for i := uint32(0); i < count; i++ {
		tt, err := readTableType(sr)
		if err != nil {
			return err
		}
		m.Tables = append(m.Tables, tt)
	}
	return nil
}

func (m *Module) parseMemorySection(sr *binary.Reader) error {
	count, err := sr.ReadU32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	m.Memories = make([]MemoryType, 0, count)
	for i := uint32(0); i < count; i++ {
		mt, err := readMemoryType(sr)
		if err != nil {
			return err
		}
		m.Memories = append(m.Memories, mt)
	}
	return nil
}

func (m *Module) parseGlobalSection(sr *binary.Reader) error {
	count, err := sr.ReadU32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	m.Globals = make([]Global, 0, count)
	for i := uint32(0); i < count; i++ {
		gt, err := readGlobalType(sr)
		if err != nil {
			return err
		}
		init, err := readInitExpr(sr)
		if err != nil {
			return err
		}
		m.Globals = append(m.Globals, Global{Type: gt, Init: init})
	}
	return nil
}

func (m *Module) parseExportSection(sr *binary.Reader) error {
	count, err := sr.ReadU32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	m.Exports = make([]Export, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := sr.ReadName()
		if err != nil {
			return err
		}
		tag, err := sr.ReadByte()
		if err != nil {
			return err
		}
		kind, ok := externKindFromDesc(tag)
		if !ok {
			return errors.InvalidByte(errors.PhaseDecode, errors.KindInvalidKindTag, sr.Position(), tag)
		}
		idx, err := sr.ReadU32()
		if err != nil {
			return err
		}
		m.Exports = append(m.Exports, Export{Name: name, Kind: kind, Idx: idx})
	}
	return nil
}

func (m *Module) parseStartSection(sr *binary.Reader) error {
	idx, err := sr.ReadU32()
	if err != nil {
		return err
	}
	m.Start = &idx
	return nil
}

func (m *Module) parseDataCountSection(sr *binary.Reader) error {
	count, err := sr.ReadU32()
	if err != nil {
		return err
	}
	m.DataCount = &count
	return nil
}

// parseRawSection reads the entry count and keeps the full payload verbatim.
func parseRawSection(sr *binary.Reader, payload []byte) (*RawSection, error) {
	count, err := sr.ReadU32()
	if err != nil {
		return nil, err
	}
	return &RawSection{Count: count, Payload: payload}, nil
}

// readValType reads and checks a value type byte.
func readValType(sr *binary.Reader) (ValType, error) {
	b, err := sr.ReadByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case ValI32, ValI64, ValF32, ValF64, ValFuncRef, ValAnyRef:
		return ValType(b), nil
	}
	return 0, errors.InvalidByte(errors.PhaseDecode, errors.KindInvalidValueType, sr.Position(), b)
}

func readValTypes(sr *binary.Reader) ([]ValType, error) {
	count, err := sr.ReadU32()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	out := make([]ValType, 0, count)
	for i := uint32(0); i < count; i++ {
		vt, err := readValType(sr)
		if err != nil {
			return nil, err
		}
		out = append(out, vt)
	}
	return out, nil
}

// readFuncType reads a 0x60-tagged function type.
func readFuncType(sr *binary.Reader) (FuncType, error) {
	tag, err := sr.ReadByte()
	if err != nil {
		return FuncType{}, err
	}
	if tag != FuncTypeTag {
		return FuncType{}, errors.New(errors.PhaseDecode, errors.KindInvalidByte).
			Offset(sr.Position()).
			Detail("expected functype tag 0x60, got %#x", tag).
			Build()
	}
	params, err := readValTypes(sr)
	if err != nil {
		return FuncType{}, err
	}
	results, err := readValTypes(sr)
	if err != nil {
		return FuncType{}, err
	}
	return FuncType{Params: params, Results: results}, nil
}

// readLimits reads a limits flag byte and its bounds. Only flags 0x00 and
// 0x01 are accepted.
func readLimits(sr *binary.Reader) (Limits, error) {
	flag, err := sr.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	if flag != LimitsNoMax && flag != LimitsHasMax {
		return Limits{}, errors.InvalidByte(errors.PhaseDecode, errors.KindInvalidLimits, sr.Position(), flag)
	}
	min, err := sr.ReadU32()
	if err != nil {
		return Limits{}, err
	}
	l := Limits{Min: min}
	if flag == LimitsHasMax {
		max, err := sr.ReadU32()
		if err != nil {
			return Limits{}, err
		}
		if max < min {
			return Limits{}, errors.New(errors.PhaseDecode, errors.KindInvalidLimits).
				Offset(sr.Position()).
				Detail("max %d below min %d", max, min).
				Build()
		}
		l.Max = &max
	}
	return l, nil
}

// readTableType reads an element type and limits. The element type must be
// a reference type.
func readTableType(sr *binary.Reader) (TableType, error) {
	elem, err := readValType(sr)
	if err != nil {
		return TableType{}, err
	}
	if !elem.IsRef() {
		return TableType{}, errors.New(errors.PhaseDecode, errors.KindInvalidValueType).
			Offset(sr.Position()).
			Detail("table element type must be a reference type, got %s", elem).
			Build()
	}
	limits, err := readLimits(sr)
	if err != nil {
		return TableType{}, err
	}
	return TableType{Elem: elem, Limits: limits}, nil
}

func readMemoryType(sr *binary.Reader) (MemoryType, error) {
	limits, err := readLimits(sr)
	if err != nil {
		return MemoryType{}, err
	}
	return MemoryType{Limits: limits}, nil
}

// readGlobalType reads a value type followed by a mutability flag.
func readGlobalType(sr *binary.Reader) (GlobalType, error) {
	content, err := readValType(sr)
	if err != nil {
		return GlobalType{}, err
	}
	mut, err := sr.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	if mut != MutConst && mut != MutVar {
		return GlobalType{}, errors.New(errors.PhaseDecode, errors.KindInvalidByte).
			Offset(sr.Position()).
			Detail("invalid mutability flag %#x", mut).
			Build()
	}
	return GlobalType{Content: content, Mutable: mut == MutVar}, nil
}

// readInitExpr reads a constant initializer expression and returns its raw
// bytes, end opcode included. Only const instructions, global.get, ref.func
// and ref.null are accepted.
func readInitExpr(sr *binary.Reader) ([]byte, error) {
	start := sr.Position()
	op, err := sr.ReadByte()
	if err != nil {
		return nil, err
	}
	switch op {
	case OpI32Const:
		_, err = sr.ReadS32()
	case OpI64Const:
		_, err = sr.ReadS64()
	case OpF32Const:
		err = sr.Skip(4)
	case OpF64Const:
		err = sr.Skip(8)
	case OpGlobalGet, OpRefFunc:
		_, err = sr.ReadU32()
	case OpRefNull:
		var ht ValType
		ht, err = readValType(sr)
		if err == nil && !ht.IsRef() {
			err = errors.New(errors.PhaseDecode, errors.KindInvalidInitExpr).
				Offset(sr.Position()).
				Detail("ref.null heap type must be a reference type, got %s", ht).
				Build()
		}
	default:
		return nil, errors.InvalidByte(errors.PhaseDecode, errors.KindInvalidInitExpr, sr.Position(), op)
	}
	if err != nil {
		return nil, err
	}
	end, err := sr.ReadByte()
	if err != nil {
		return nil, err
	}
	if end != OpEnd {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidInitExpr).
			Offset(sr.Position()).
			Detail("expected end opcode, got %#x", end).
			Build()
	}
	return sr.BytesSince(start), nil
}

// Imports decodes data and returns its resolved imports in section order.
// An empty or absent import section yields an empty slice.
func Imports(data []byte) ([]ImportType, error) {
	m, err := ParseModule(data)
	if err != nil {
		return nil, err
	}
	return m.ImportTypes()
}

// Exports decodes data and returns its resolved exports in section order.
func Exports(data []byte) ([]ExportType, error) {
	m, err := ParseModule(data)
	if err != nil {
		return nil, err
	}
	return m.ExportTypes()
}
