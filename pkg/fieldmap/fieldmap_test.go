package fieldmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultOrderAndRename(t *testing.T) {
	m := Default()

	keys := m.Keys()
	if len(keys) != 13 {
		t.Fatalf("expected 13 fields, got %d", len(keys))
	}
	if keys[0] != IdentifierKey {
		t.Fatalf("expected %s first, got %s", IdentifierKey, keys[0])
	}
	if got := m.Rename(LigandNameKey); got != "Ligand Name(s)" {
		t.Fatalf("rename %s: got %q", LigandNameKey, got)
	}
	// Unknown columns, like the chain discriminator, pass through untouched.
	if got := m.Rename(DiscriminatorColumn); got != DiscriminatorColumn {
		t.Fatalf("expected %s to pass through, got %q", DiscriminatorColumn, got)
	}
	if got := m.QueryList(); !strings.HasPrefix(got, "structureId,structureTitle,") {
		t.Fatalf("unexpected query list: %s", got)
	}
}

func TestDefaultRoles(t *testing.T) {
	m := Default()
	if m.IdentifierColumn() != "PDB ID" {
		t.Fatalf("identifier column: got %q", m.IdentifierColumn())
	}
	if m.ResolutionColumn() != "Resolution" {
		t.Fatalf("resolution column: got %q", m.ResolutionColumn())
	}
	if m.ReleaseDateColumn() != "Rel. Date" {
		t.Fatalf("release date column: got %q", m.ReleaseDateColumn())
	}

	merge := m.MergeColumns()
	if len(merge) != 5 {
		t.Fatalf("expected 5 merge columns, got %v", merge)
	}
}

func TestDefaultCondensedLayout(t *testing.T) {
	layout := Default().CondensedLayout()
	// Source and Ligand SMILES sit right after Classification.
	want := []string{"PDB ID", "Structure Title", "Resolution", "Ligand Name(s)", "Classification", "Source", "Ligand SMILES"}
	for i, name := range want {
		if layout[i] != name {
			t.Fatalf("layout[%d]: got %q, want %q", i, layout[i], name)
		}
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	content := `fields:
  - key: structureId
    display: ID
  - key: structureTitle
    display: Title
merge:
  - Title
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.IdentifierColumn() != "ID" {
		t.Fatalf("identifier column: got %q", m.IdentifierColumn())
	}
	if got := m.MergeColumns(); len(got) != 1 || got[0] != "Title" {
		t.Fatalf("merge columns: got %v", got)
	}
	// Layout falls back to the declared field order.
	if got := m.CondensedLayout(); len(got) != 2 || got[0] != "ID" {
		t.Fatalf("layout: got %v", got)
	}
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty", "fields: []\n"},
		{"missing identifier", "fields:\n  - key: structureTitle\n    display: Title\n"},
		{"duplicate key", "fields:\n  - key: structureId\n    display: A\n  - key: structureId\n    display: B\n"},
		{"blank display", "fields:\n  - key: structureId\n    display: \"\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fields.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected a validation error, got nil")
			}
		})
	}
}
