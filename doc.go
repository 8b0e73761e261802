// Package wasmcodec is the root of a strict codec library for the
// WebAssembly binary module format.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	wasm-codec/
//	├── wasm/                 Module decoding, encoding, section scanning
//	│   └── internal/binary/  LEB128 cursor primitives (Reader, Writer)
//	├── errors/               Structured error types with canonical messages
//	└── cmd/inspect/          CLI for listing sections, imports and exports
//
// # Quick Start
//
// Inspect what a module imports and exports:
//
//	imports, err := wasm.Imports(wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	exports, err := wasm.Exports(wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or decode once and work with the structure:
//
//	m, err := wasm.ParseModule(wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(m.Types, m.NumImportedFuncs())
//
// # Strictness
//
// Decoding enforces the binary format's rules rather than accepting a
// superset: varint length and sign-extension limits, structural UTF-8
// validation of names, section ordering, declared-vs-consumed section
// sizes, and the function/code and data-count consistency checks. Errors
// carry the WebAssembly standard's canonical message text, such as
// "integer representation too long" and "section size mismatch".
//
// # Wrapper Synthesis
//
// wasm.FuncWrapper and wasm.GlobalWrapper build minimal one-entity modules
// with in-place patchable size fields and closed-form output lengths, for
// hosts that stamp out adapter modules at runtime.
//
// # Thread Safety
//
// Decoded Modules are plain data and safe for concurrent reads. Decoding,
// encoding and scanning never mutate their input.
package wasmcodec
