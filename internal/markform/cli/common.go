// Package cli wires the L2-L9 engine packages into the markform command
// line, the same "thin cobra shell over internal packages" shape as the
// teacher's internal/echoctl/cmd: a root command plus one subcommand per
// tool-surface operation (spec §6.3), minus the templates/cliflag helper
// packages the retrieval pack doesn't carry a copy of.
package cli

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/parser"
	"github.com/jlevy/markform/internal/markform/serializer"
)

// loadForm reads and parses a .form.md file from disk.
func loadForm(path string) (*model.ParsedForm, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	form, err := parser.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return form, nil
}

// writeForm serializes form back to canonical Markdown and writes it to
// path, or to stdout when path is empty.
func writeForm(path string, form *model.ParsedForm) error {
	src, err := serializer.Serialize(form)
	if err != nil {
		return fmt.Errorf("serialize form: %w", err)
	}
	if path == "" {
		_, err := fmt.Print(src)
		return err
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// loadPatches reads a JSON array of Patch objects from path.
func loadPatches(path string) ([]model.Patch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var patches []model.Patch
	if err := sonic.Unmarshal(raw, &patches); err != nil {
		return nil, fmt.Errorf("parse patches %s: %w", path, err)
	}
	return patches, nil
}
