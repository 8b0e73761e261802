package wasm_test

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/wasmkit/wasm-codec/wasm"
)

// These tests feed synthesized and re-encoded modules to a real engine to
// confirm they are valid WebAssembly, not just self-consistent.
//
// The wrapper layout imports under empty module and field names, which
// wazero refuses at compile time ("import[0] has an empty module name"), so
// the function-wrapper tests rename the import through a decode/encode pass
// before compiling. The bytes under test are otherwise the wrapper's own.

// withImportNames decodes bin, renames every import, and re-encodes.
func withImportNames(t *testing.T, bin []byte, module, name string) []byte {
	t.Helper()
	m, err := wasm.ParseModule(bin)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	for i := range m.Imports {
		m.Imports[i].Module = module
		m.Imports[i].Name = name
	}
	out, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return out
}

func TestFuncWrapperCompilesUnderWazero(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	tests := []wasm.FuncType{
		{},
		{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}},
		{Params: []wasm.ValType{wasm.I32, wasm.I64, wasm.F32, wasm.F64}},
		{Params: []wasm.ValType{wasm.FuncRef, wasm.AnyRef}, Results: []wasm.ValType{wasm.AnyRef}},
		{Results: []wasm.ValType{wasm.I32, wasm.I64}},
	}
	for _, ft := range tests {
		bin := withImportNames(t, wasm.FuncWrapper(ft), "env", "f")
		compiled, err := r.CompileModule(ctx, bin)
		if err != nil {
			t.Errorf("wrapper for %s rejected by engine: %v", ft, err)
			continue
		}
		compiled.Close(ctx)
	}
}

func TestGlobalWrapperCompilesUnderWazero(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	for _, vt := range []wasm.ValType{wasm.I32, wasm.I64, wasm.F32, wasm.F64, wasm.FuncRef, wasm.AnyRef} {
		for _, mutable := range []bool{false, true} {
			gt := wasm.GlobalType{Content: vt, Mutable: mutable}
			bin := wasm.GlobalWrapper(gt)
			compiled, err := r.CompileModule(ctx, bin)
			if err != nil {
				t.Errorf("wrapper for %s rejected by engine: %v", gt, err)
				continue
			}
			compiled.Close(ctx)
		}
	}
}

func TestEncodeCompilesUnderWazero(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	// Decode a wrapper, rename its import, re-encode canonically, and
	// compile the result.
	bin := wasm.FuncWrapper(wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I64}})
	out := withImportNames(t, bin, "env", "f")
	compiled, err := r.CompileModule(ctx, out)
	if err != nil {
		t.Fatalf("re-encoded module rejected by engine: %v", err)
	}
	compiled.Close(ctx)
}
