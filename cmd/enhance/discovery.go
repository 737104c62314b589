package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-enhance/internal/fileutil"
)

// ErrInvalidExtension is returned for a single input that is not an HTML page.
var ErrInvalidExtension = errors.New("file must have .html or .htm extension")

// PageToEnhance represents a single page to process.
type PageToEnhance struct {
	InputPath  string
	OutputPath string
}

// discoverPages finds all HTML pages to enhance. Already enhanced output
// is skipped when walking a directory.
func discoverPages(inputPath, outputDir string) ([]PageToEnhance, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateHTMLExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []PageToEnhance{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var pages []PageToEnhance
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !fileutil.IsHTML(path) {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		pages = append(pages, PageToEnhance{InputPath: path, OutputPath: outPath})
		return nil
	})

	return pages, err
}

// resolveOutputPath determines the enhanced output path for a page.
// An outputDir ending in .html names the output file of a single page.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	name := fileutil.EnhancedName(filepath.Base(inputPath))

	if outputDir == "" {
		return fileutil.EnhancedName(inputPath)
	}

	if baseInputDir == "" && isHTMLName(outputDir) {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), name)
		}
	}

	return filepath.Join(outputDir, name)
}

// validateHTMLExtension checks that the file has an .html or .htm extension.
func validateHTMLExtension(path string) error {
	if !isHTMLName(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

func isHTMLName(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}
