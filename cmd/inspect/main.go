package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wasmkit/wasm-codec/wasm"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to wasm module")
		showImports = flag.Bool("imports", false, "List resolved imports")
		showExports = flag.Bool("exports", false, "List resolved exports")
		sectionID   = flag.Int("section", -1, "Hex dump a single section by id")
		verify      = flag.Bool("verify", false, "Compile the module with a real engine")
		verbose     = flag.Bool("v", false, "Enable debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -wasm <file.wasm> [-imports] [-exports] [-section id] [-verify]")
		fmt.Fprintln(os.Stderr, "       inspect -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			wasm.SetLogger(logger)
			defer logger.Sync()
		}
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*wasmFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *showImports, *showExports, *sectionID, *verify); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(wasmFile string, showImports, showExports bool, sectionID int, verify bool) error {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	sections, err := wasm.Sections(data)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	fmt.Printf("Module: %s (%d bytes)\n\n", wasmFile, len(data))
	fmt.Println("Sections:")
	for _, s := range sections {
		fmt.Printf("  %2d %-10s offset %6d  size %6d\n", s.ID, s.Name, s.Offset, s.Size)
	}

	if sectionID >= 0 {
		payload, err := wasm.ScanSection(data, byte(sectionID))
		if err != nil {
			return fmt.Errorf("scan section %d: %w", sectionID, err)
		}
		if payload == nil {
			fmt.Printf("\nSection %d: not present\n", sectionID)
		} else {
			fmt.Printf("\nSection %d payload:\n%s", sectionID, hex.Dump(payload))
		}
	}

	if showImports || showExports {
		m, err := wasm.ParseModule(data)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}

		if showImports {
			imports, err := m.ImportTypes()
			if err != nil {
				return fmt.Errorf("resolve imports: %w", err)
			}
			fmt.Printf("\nImports (%d):\n", len(imports))
			for _, imp := range imports {
				fmt.Printf("  %s.%s: %s\n", imp.Module, imp.Name, imp.Type)
			}
		}

		if showExports {
			exports, err := m.ExportTypes()
			if err != nil {
				return fmt.Errorf("resolve exports: %w", err)
			}
			fmt.Printf("\nExports (%d):\n", len(exports))
			for _, exp := range exports {
				fmt.Printf("  %s: %s\n", exp.Name, exp.Type)
			}
		}
	}

	if verify {
		ctx := context.Background()
		rt := wazero.NewRuntime(ctx)
		defer rt.Close(ctx)

		compiled, err := rt.CompileModule(ctx, data)
		if err != nil {
			return fmt.Errorf("engine rejected module: %w", err)
		}
		compiled.Close(ctx)
		fmt.Println("\nModule compiles under wazero.")
	}

	return nil
}
