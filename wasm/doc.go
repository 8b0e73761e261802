// Package wasm implements a strict codec for the WebAssembly binary module
// format: LEB128 varints with the format's length and sign-extension rules,
// the structural types (value types, limits, function, global, table and
// memory types), section decoding with ordering and size checks, and a
// synthesizer for minimal wrapper modules around a single function or
// global.
//
// Decoding a module and listing what it exports:
//
//	m, err := wasm.ParseModule(data)
//	if err != nil {
//		return err
//	}
//	exports, err := m.ExportTypes()
//	if err != nil {
//		return err
//	}
//	for _, e := range exports {
//		fmt.Printf("%s: %s\n", e.Name, e.Type)
//	}
//
// The package-level Imports and Exports helpers combine the two steps. For
// raw access without a full decode, ScanSection locates a single section's
// payload by id.
//
// FuncWrapper and GlobalWrapper build one-entity modules whose length is
// known in closed form (FuncWrapperSize, GlobalWrapperSize) and whose size
// fields are encoded as fixed five-byte varints so they can be patched in
// place.
//
// Malformed input is reported through structured errors from the errors
// package, carrying the standard's canonical message text such as "integer
// representation too long" or "section size mismatch". Decoding never
// panics on untrusted input.
package wasm
