package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dghofer/docsight/internal/fragment"
	"github.com/dghofer/docsight/internal/parser"
	"github.com/dghofer/docsight/internal/pipeline"
)

func newOutlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outline <file> [file...]",
		Short: "Detect the title and heading outline of documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := parseFiles(args)
			if err != nil {
				return err
			}

			outlines, _, err := pipeline.BuildIndex(cmd.Context(), docs, 4, nil)
			if err != nil {
				return err
			}
			return writeJSON(os.Stdout, outlines)
		},
	}
}

// parseFiles parses every named file. A directory argument expands to its
// supported files in name order.
func parseFiles(args []string) ([]fragment.Document, error) {
	paths, err := expandArgs(args)
	if err != nil {
		return nil, err
	}
	docs := make([]fragment.Document, 0, len(paths))
	for _, path := range paths {
		p, err := parser.ForFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		doc, err := p.Parse(f, path)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func expandArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		found := false
		for _, e := range entries {
			if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
				continue
			}
			paths = append(paths, filepath.Join(arg, e.Name()))
			found = true
		}
		if !found {
			return nil, fmt.Errorf("%s: no supported documents", arg)
		}
	}
	return paths, nil
}

func writeJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	if viper.GetBool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
