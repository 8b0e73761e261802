package wasm

import (
	"github.com/wasmkit/wasm-codec/errors"
	"github.com/wasmkit/wasm-codec/wasm/internal/binary"
)

// SectionInfo locates one section inside a module binary.
type SectionInfo struct {
	ID     byte
	Name   string
	Offset int // offset of the section id byte
	Size   uint32
}

// ScanSection walks the section list and returns the payload of the first
// section with the given id, without decoding anything else. It returns nil
// when no such section exists. The returned slice aliases data.
func ScanSection(data []byte, id byte) ([]byte, error) {
	sections, err := scan(data)
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		if s.ID == id {
			start := s.Offset + sectionHeaderLen(data, s.Offset)
			return data[start : start+int(s.Size)], nil
		}
	}
	return nil, nil
}

// Sections lists every section in the module in file order.
func Sections(data []byte) ([]SectionInfo, error) {
	return scan(data)
}

func scan(data []byte) ([]SectionInfo, error) {
	r := binary.NewReader(data)
	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, scanErr(err)
	}
	if magic != Magic {
		return nil, errors.New(errors.PhaseScan, errors.KindInvalidMagic).
			Detail("got %#08x, want %#08x", magic, Magic).
			Build()
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, scanErr(err)
	}
	if version != Version {
		return nil, errors.New(errors.PhaseScan, errors.KindInvalidVersion).
			Detail("got %d, want %d", version, Version).
			Build()
	}

	var out []SectionInfo
	for r.Remaining() > 0 {
		offset := r.Position()
		id, err := r.ReadByte()
		if err != nil {
			return nil, scanErr(err)
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, scanErr(err)
		}
		if err := r.Skip(int(size)); err != nil {
			return nil, errors.New(errors.PhaseScan, errors.KindUnexpectedEnd).
				Section(sectionName(id)).
				Offset(offset).
				Detail("section extends past end of module").
				Build()
		}
		out = append(out, SectionInfo{ID: id, Name: sectionName(id), Offset: offset, Size: size})
	}
	return out, nil
}

// sectionHeaderLen measures the id byte plus the size varint at offset.
func sectionHeaderLen(data []byte, offset int) int {
	n := 2 // id byte plus at least one size byte
	for i := offset + 1; i < len(data) && data[i]&0x80 != 0; i++ {
		n++
	}
	return n
}

func scanErr(err error) error {
	if e, ok := err.(*errors.Error); ok {
		e.Phase = errors.PhaseScan
	}
	return err
}
