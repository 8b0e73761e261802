package wasm

import (
	"github.com/wasmkit/wasm-codec/errors"
	"github.com/wasmkit/wasm-codec/wasm/internal/binary"
)

// Validate cross-checks the module's index references: type indices in the
// function section and func imports, export indices against their index
// spaces, the start function, and the indices referenced by global
// initializers. It does not validate code bodies.
func (m *Module) Validate() error {
	for i := range m.Imports {
		imp := &m.Imports[i]
		if imp.Kind == ExternFunc && int(imp.TypeIdx) >= len(m.Types) {
			return validateErr(errors.IndexOutOfRange(errors.PhaseValidate, "type", int(imp.TypeIdx), len(m.Types)), "import")
		}
	}

	for _, idx := range m.Funcs {
		if int(idx) >= len(m.Types) {
			return validateErr(errors.IndexOutOfRange(errors.PhaseValidate, "type", int(idx), len(m.Types)), "function")
		}
	}

	numFuncs := m.NumImportedFuncs() + len(m.Funcs)
	numGlobals := m.NumImportedGlobals() + len(m.Globals)
	numTables := m.NumImportedTables() + len(m.Tables)
	numMemories := m.NumImportedMemories() + len(m.Memories)

	if numTables > 1 {
		return errors.New(errors.PhaseValidate, errors.KindIndexOutOfRange).
			Section("table").
			Detail("at most one table is allowed, got %d", numTables).
			Build()
	}
	if numMemories > 1 {
		return errors.New(errors.PhaseValidate, errors.KindIndexOutOfRange).
			Section("memory").
			Detail("at most one memory is allowed, got %d", numMemories).
			Build()
	}

	// Global initializers may only reference imported globals and any
	// declared function.
	importedGlobals := m.NumImportedGlobals()
	for i := range m.Globals {
		if err := validateInitRefs(m.Globals[i].Init, importedGlobals, numFuncs); err != nil {
			return validateErr(err, "global")
		}
	}

	for _, exp := range m.Exports {
		var space int
		switch exp.Kind {
		case ExternFunc:
			space = numFuncs
		case ExternGlobal:
			space = numGlobals
		case ExternTable:
			space = numTables
		default:
			space = numMemories
		}
		if int(exp.Idx) >= space {
			return validateErr(errors.IndexOutOfRange(errors.PhaseValidate, exp.Kind.String(), int(exp.Idx), space), "export")
		}
	}

	if m.Start != nil && int(*m.Start) >= numFuncs {
		return validateErr(errors.IndexOutOfRange(errors.PhaseValidate, "function", int(*m.Start), numFuncs), "start")
	}

	return nil
}

// validateInitRefs re-reads a raw initializer and range-checks global.get
// and ref.func immediates.
func validateInitRefs(init []byte, importedGlobals, numFuncs int) error {
	r := binary.NewReader(init)
	op, err := r.ReadByte()
	if err != nil {
		return err
	}
	switch op {
	case OpGlobalGet:
		idx, err := r.ReadU32()
		if err != nil {
			return err
		}
		if int(idx) >= importedGlobals {
			return errors.IndexOutOfRange(errors.PhaseValidate, "imported global", int(idx), importedGlobals)
		}
	case OpRefFunc:
		idx, err := r.ReadU32()
		if err != nil {
			return err
		}
		if int(idx) >= numFuncs {
			return errors.IndexOutOfRange(errors.PhaseValidate, "function", int(idx), numFuncs)
		}
	}
	return nil
}

// ParseModuleValidate decodes and then validates in one call.
func ParseModuleValidate(data []byte) (*Module, error) {
	m, err := ParseModule(data)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func validateErr(err error, section string) error {
	if e, ok := err.(*errors.Error); ok && e.Section == "" {
		e.Section = section
	}
	return err
}
