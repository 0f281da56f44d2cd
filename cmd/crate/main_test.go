package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const descriptor = `name: NamedType
version: 1.0.0
description: Strong typing for C++
license: MIT
url: https://github.com/joboccara/NamedType
repo_url: https://github.com/joboccara/NamedType.git
author: Jonathan Boccara (jonathan@fluentcpp.com)
exports_sources: ["*.hpp", "LICENSE", "README.md"]
`

func TestRun(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tests := []struct {
		name         string
		files        map[string]string
		args         []string
		expectedExit int
		expectedFile string
	}{
		{
			name: "Package with valid descriptor",
			files: map[string]string{
				"crate.yaml":     descriptor,
				"named_type.hpp": "#pragma once",
				"LICENSE":        "MIT License",
				"README.md":      "# NamedType",
			},
			args:         []string{"crate", "package", "out"},
			expectedExit: 0,
			expectedFile: "out/include/named_type.hpp",
		},
		{
			name: "Package with missing license",
			files: map[string]string{
				"crate.yaml":     descriptor,
				"named_type.hpp": "#pragma once",
				"README.md":      "# NamedType",
			},
			args:         []string{"crate", "package", "out"},
			expectedExit: 1,
		},
		{
			name: "Disabled source ignores unreadable records",
			files: map[string]string{
				"crate.yaml":          descriptor,
				".crate/records.json": "{",
			},
			args:         []string{"crate", "source", "work"},
			expectedExit: 0,
		},
		{
			name: "Info ignores unreadable records",
			files: map[string]string{
				"crate.yaml":          descriptor,
				".crate/records.json": "{",
			},
			args:         []string{"crate", "info"},
			expectedExit: 0,
		},
		{
			name: "Package replaces unreadable records",
			files: map[string]string{
				"crate.yaml":          descriptor,
				".crate/records.json": "{",
				"named_type.hpp":      "#pragma once",
				"LICENSE":             "MIT License",
				"README.md":           "# NamedType",
			},
			args:         []string{"crate", "package", "out"},
			expectedExit: 0,
			expectedFile: "out/include/named_type.hpp",
		},
		{
			name:         "Missing descriptor",
			args:         []string{"crate", "info"},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			for name, content := range tt.files {
				path := filepath.Join(tmpDir, filepath.FromSlash(name))
				if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
					t.Fatalf("failed to create directory for %s: %v", name, err)
				}
				if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
					t.Fatalf("failed to write %s: %v", name, err)
				}
			}

			// Change to tmpDir for relative path resolution
			originalWd, _ := os.Getwd()
			if err := os.Chdir(tmpDir); err != nil {
				t.Fatalf("failed to chdir: %v", err)
			}
			defer func() {
				_ = os.Chdir(originalWd)
			}()

			os.Args = tt.args

			exitCode := run()
			assert.Equal(t, tt.expectedExit, exitCode)
			if tt.expectedFile != "" {
				assert.FileExists(t, filepath.Join(tmpDir, tt.expectedFile))
			}
		})
	}
}
