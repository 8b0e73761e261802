package wasm

import (
	"testing"

	"github.com/wasmkit/wasm-codec/errors"
)

func TestValidate_TypeIndices(t *testing.T) {
	// Function section references type 1 but only type 0 exists.
	data := mod(
		sec(SectionType, 0x01, 0x60, 0x00, 0x00),
		sec(SectionFunction, 0x01, 0x01),
		sec(SectionCode, 0x01, 0x02, 0x00, 0x0B),
	)
	m, err := ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if err := m.Validate(); !errors.IsKind(err, errors.KindIndexOutOfRange) {
		t.Errorf("got %v, want index_out_of_range", err)
	}

	// Func import with an out-of-range type index.
	data = mod(
		sec(SectionType, 0x01, 0x60, 0x00, 0x00),
		sec(SectionImport, 0x01, 0x01, 'e', 0x01, 'f', 0x00, 0x05),
	)
	_, err = ParseModuleValidate(data)
	if !errors.IsKind(err, errors.KindIndexOutOfRange) {
		t.Errorf("got %v, want index_out_of_range", err)
	}
}

func TestValidate_ExportIndices(t *testing.T) {
	tests := []struct {
		name   string
		export []byte
	}{
		{"func", []byte{0x01, 'x', 0x00, 0x01}},
		{"table", []byte{0x01, 'x', 0x01, 0x00}},
		{"memory", []byte{0x01, 'x', 0x02, 0x00}},
		{"global", []byte{0x01, 'x', 0x03, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := append([]byte{0x01}, tt.export...)
			data := mod(
				sec(SectionType, 0x01, 0x60, 0x00, 0x00),
				sec(SectionFunction, 0x01, 0x00),
				sec(SectionExport, payload...),
				sec(SectionCode, 0x01, 0x02, 0x00, 0x0B),
			)
			m, err := ParseModule(data)
			if err != nil {
				t.Fatalf("ParseModule: %v", err)
			}
			if err := m.Validate(); !errors.IsKind(err, errors.KindIndexOutOfRange) {
				t.Errorf("got %v, want index_out_of_range", err)
			}
		})
	}
}

func TestValidate_StartIndex(t *testing.T) {
	data := mod(
		sec(SectionType, 0x01, 0x60, 0x00, 0x00),
		sec(SectionFunction, 0x01, 0x00),
		sec(SectionStart, 0x01),
		sec(SectionCode, 0x01, 0x02, 0x00, 0x0B),
	)
	m, err := ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if err := m.Validate(); !errors.IsKind(err, errors.KindIndexOutOfRange) {
		t.Errorf("got %v, want index_out_of_range", err)
	}
}

func TestValidate_GlobalInitRefs(t *testing.T) {
	// global.get in an initializer may only reference imported globals.
	data := mod(sec(SectionGlobal, 0x02,
		0x7F, 0x00, 0x41, 0x00, 0x0B, // const i32 = 0
		0x7F, 0x00, 0x23, 0x00, 0x0B, // const i32 = global.get 0 (declared, not imported)
	))
	m, err := ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if err := m.Validate(); !errors.IsKind(err, errors.KindIndexOutOfRange) {
		t.Errorf("got %v, want index_out_of_range", err)
	}

	// The same initializer is fine with an imported global at index 0.
	data = mod(
		sec(SectionImport, 0x01, 0x01, 'e', 0x01, 'g', 0x03, 0x7F, 0x00),
		sec(SectionGlobal, 0x01, 0x7F, 0x00, 0x23, 0x00, 0x0B),
	)
	if _, err := ParseModuleValidate(data); err != nil {
		t.Errorf("imported global.get: %v", err)
	}
}

func TestValidate_SingleTableAndMemory(t *testing.T) {
	data := mod(sec(SectionMemory, 0x02, 0x00, 0x01, 0x00, 0x01))
	m, err := ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if err := m.Validate(); err == nil {
		t.Error("two memories should not validate")
	}

	data = mod(sec(SectionTable, 0x02, 0x70, 0x00, 0x01, 0x70, 0x00, 0x01))
	m, err = ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if err := m.Validate(); err == nil {
		t.Error("two tables should not validate")
	}
}

func TestValidate_OK(t *testing.T) {
	data := mod(
		sec(SectionType, 0x01, 0x60, 0x00, 0x00),
		sec(SectionImport, 0x01, 0x01, 'e', 0x01, 'f', 0x00, 0x00),
		sec(SectionFunction, 0x01, 0x00),
		sec(SectionExport, 0x02,
			0x01, 'a', 0x00, 0x00,
			0x01, 'b', 0x00, 0x01,
		),
		sec(SectionStart, 0x01),
		sec(SectionCode, 0x01, 0x02, 0x00, 0x0B),
	)
	if _, err := ParseModuleValidate(data); err != nil {
		t.Fatalf("ParseModuleValidate: %v", err)
	}
}
