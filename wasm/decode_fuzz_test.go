package wasm

import (
	"reflect"
	"testing"
)

func FuzzParseModule(f *testing.F) {
	f.Add(mod())
	f.Add(mod(sec(SectionType, 0x01, 0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7F)))
	f.Add(mod(
		sec(SectionType, 0x01, 0x60, 0x00, 0x00),
		sec(SectionImport, 0x01, 0x03, 'e', 'n', 'v', 0x01, 'f', 0x00, 0x00),
		sec(SectionExport, 0x01, 0x01, 'f', 0x00, 0x00),
	))
	f.Add(FuncWrapper(FuncType{Params: []ValType{I32, I64}, Results: []ValType{F64}}))
	f.Add(GlobalWrapper(GlobalType{Content: FuncRef, Mutable: true}))
	f.Add([]byte{0x00, 0x61, 0x73, 0x6D})
	f.Add([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F})

	f.Fuzz(func(t *testing.T, data []byte) {
		m, err := ParseModule(data)
		if err != nil {
			return
		}
		// Anything that decodes must survive an encode/decode round trip.
		out, err := m.Encode()
		if err != nil {
			t.Fatalf("Encode after successful decode: %v", err)
		}
		m2, err := ParseModule(out)
		if err != nil {
			t.Fatalf("reparse of encoded module: %v", err)
		}
		if !reflect.DeepEqual(m, m2) {
			t.Error("module not stable across round trip")
		}
	})
}

func FuzzScanSections(f *testing.F) {
	f.Add(mod(sec(SectionType, 0x01, 0x60, 0x00, 0x00)))
	f.Add([]byte{})
	f.Add(mod([]byte{0x0C, 0x01, 0x00}))

	f.Fuzz(func(t *testing.T, data []byte) {
		infos, err := Sections(data)
		if err != nil {
			return
		}
		seen := map[byte]bool{}
		for _, s := range infos {
			payload, err := ScanSection(data, s.ID)
			if err != nil {
				t.Fatalf("ScanSection(%d) after successful Sections: %v", s.ID, err)
			}
			// ScanSection returns the first section with the id, so its
			// length must match the first listing.
			if !seen[s.ID] && uint32(len(payload)) != s.Size {
				t.Errorf("section %d: payload %d bytes, listed size %d", s.ID, len(payload), s.Size)
			}
			seen[s.ID] = true
		}
	})
}
