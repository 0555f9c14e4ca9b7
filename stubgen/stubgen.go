// Package stubgen emits the generated Swift source that wires every
// discovered test-provider function into one runnable program.
package stubgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FileName is the generated stub's file name under the run directory.
const FileName = "provider.swift"

const providerSuffix = "Tests"

// ProviderName derives the test-provider function name for a test source
// file: the base name without extension, first character capitalized, with
// the Tests suffix appended when the name does not already carry it.
func ProviderName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	r, size := utf8.DecodeRuneInString(base)
	if r == utf8.RuneError {
		return base
	}
	name := string(unicode.ToUpper(r)) + base[size:]
	if !strings.HasSuffix(name, providerSuffix) {
		name += providerSuffix
	}
	return name
}

// Generate produces the stub source registering every provider in source
// declaration order. Output is deterministic: identical input paths yield
// byte-identical output.
func Generate(testSources []string) string {
	var b strings.Builder
	b.WriteString("// Generated file. Do not edit.\n\n")
	b.WriteString("func runProviders() {\n")
	for _, src := range testSources {
		fmt.Fprintf(&b, "    %s()\n", ProviderName(src))
	}
	b.WriteString("}\n")
	return b.String()
}

// Write generates the stub and overwrites path with it. The overwrite is
// idempotent; prior content is never merged.
func Write(path string, testSources []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create stub directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Generate(testSources)), 0644); err != nil {
		return fmt.Errorf("failed to write stub %s: %w", path, err)
	}
	return nil
}
