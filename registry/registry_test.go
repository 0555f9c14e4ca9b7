package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tests.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestRegistry(t *testing.T, content string) (*Registry, error) {
	t.Helper()
	return NewRegistry(Config{
		Log:          log.New(),
		ManifestFile: writeManifest(t, content),
	})
}

func TestLoadManifest(t *testing.T) {
	r, err := newTestRegistry(t, `
tests:
  - name: values
    sources:
      - valuesTests.swift
    frameworks:
      - name: Kt
        bitcode: true
    fullBitcode: true
  - name: stdlib
    sources:
      - stdlibTests.swift
    frameworks:
      - name: Stdlib
        artifact: KotlinStdlib
    codesign: true
`)
	require.NoError(t, err)

	tests := r.GetTests()
	require.Len(t, tests, 2)

	assert.Equal(t, "values", tests[0].Name)
	assert.True(t, tests[0].FullBitcode)
	assert.True(t, tests[0].Frameworks[0].EmbedBitcode)
	assert.Equal(t, "Kt", tests[0].Frameworks[0].Artifact, "artifact defaults to the framework name")

	assert.Equal(t, "stdlib", tests[1].Name)
	assert.True(t, tests[1].Codesign)
	assert.Equal(t, "KotlinStdlib", tests[1].Frameworks[0].Artifact)
}

func TestSourcesAnchoredToManifestDir(t *testing.T) {
	path := writeManifest(t, `
tests:
  - name: values
    sources:
      - valuesTests.swift
      - /abs/otherTests.swift
    frameworks:
      - name: Kt
`)
	r, err := NewRegistry(Config{Log: log.New(), ManifestFile: path})
	require.NoError(t, err)

	tests := r.GetTests()
	require.Len(t, tests, 1)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "valuesTests.swift"), tests[0].Sources[0])
	assert.Equal(t, "/abs/otherTests.swift", tests[0].Sources[1], "absolute paths pass through untouched")
}

func TestGetTest(t *testing.T) {
	r, err := newTestRegistry(t, `
tests:
  - name: values
    sources: [valuesTests.swift]
    frameworks:
      - name: Kt
`)
	require.NoError(t, err)

	test, ok := r.GetTest("values")
	require.True(t, ok)
	assert.Equal(t, "values", test.Name)

	_, ok = r.GetTest("missing")
	assert.False(t, ok)
}

func TestManifestValidation(t *testing.T) {
	for _, tc := range []struct {
		name     string
		manifest string
		wantErr  string
	}{
		{
			name:     "empty manifest",
			manifest: `tests: []`,
			wantErr:  "declares no tests",
		},
		{
			name: "missing test name",
			manifest: `
tests:
  - sources: [a.swift]
    frameworks:
      - name: Kt
`,
			wantErr: "has no name",
		},
		{
			name: "duplicate test names",
			manifest: `
tests:
  - name: values
    sources: [a.swift]
    frameworks:
      - name: Kt
  - name: values
    sources: [b.swift]
    frameworks:
      - name: Kt
`,
			wantErr: `duplicate test name "values"`,
		},
		{
			name: "no sources",
			manifest: `
tests:
  - name: values
    frameworks:
      - name: Kt
`,
			wantErr: "has no sources",
		},
		{
			name: "no frameworks",
			manifest: `
tests:
  - name: values
    sources: [a.swift]
`,
			wantErr: "declares no frameworks",
		},
		{
			name: "framework without name",
			manifest: `
tests:
  - name: values
    sources: [a.swift]
    frameworks:
      - artifact: Kt
`,
			wantErr: "framework 0 has no name",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestRegistry(t, tc.manifest)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestMissingManifestFile(t *testing.T) {
	_, err := NewRegistry(Config{
		Log:          log.New(),
		ManifestFile: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load manifest")
}

func TestManifestFileRequired(t *testing.T) {
	_, err := NewRegistry(Config{Log: log.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest file is required")
}
