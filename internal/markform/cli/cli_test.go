package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jlevy/markform/internal/markform/model"
)

const sampleFormSource = `{% form id="f" %}
{% field kind="string" id="name" required=true %}
{% /field %}
{% /form %}
`

func TestLoadForm_ParsesAFileFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.form.md")
	if err := os.WriteFile(path, []byte(sampleFormSource), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	form, err := loadForm(path)
	if err != nil {
		t.Fatalf("loadForm: %v", err)
	}
	if form.FieldByID("name") == nil {
		t.Fatalf("expected field 'name' in parsed form")
	}
}

func TestLoadForm_ReturnsAnErrorForAMissingFile(t *testing.T) {
	if _, err := loadForm(filepath.Join(t.TempDir(), "missing.form.md")); err == nil {
		t.Fatalf("expected an error for a nonexistent path")
	}
}

func TestWriteForm_WritesCanonicalMarkdownToAFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.form.md")
	if err := os.WriteFile(path, []byte(sampleFormSource), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	form, err := loadForm(path)
	if err != nil {
		t.Fatalf("loadForm: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "out.form.md")
	if err := writeForm(outPath, form); err != nil {
		t.Fatalf("writeForm: %v", err)
	}
	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(out), `id="name"`) {
		t.Fatalf("expected serialized output to contain the 'name' field, got: %s", out)
	}
}

func TestLoadPatches_DecodesAJSONPatchArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches.json")
	content := `[{"op":"set_string","fieldId":"name","value":"Alice"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	patches, err := loadPatches(path)
	if err != nil {
		t.Fatalf("loadPatches: %v", err)
	}
	if len(patches) != 1 || patches[0].Op != model.OpSetString || patches[0].FieldID != "name" {
		t.Fatalf("unexpected patches: %+v", patches)
	}
}

func TestNewDefaultMarkformCommand_RegistersAllSubcommands(t *testing.T) {
	root := NewDefaultMarkformCommand()
	want := map[string]bool{"inspect": false, "apply": false, "fill": false, "export": false, "serve": false}
	for _, c := range root.Commands() {
		name := strings.SplitN(c.Use, " ", 2)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("expected a %q subcommand to be registered", name)
		}
	}
}
