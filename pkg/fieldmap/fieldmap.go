// Package fieldmap defines the correspondence between RCSB custom-report
// field keys and the display column names used in the output CSVs.
//
// A Mapping is built once (from the defaults or a YAML file) and passed by
// value into the rest of the pipeline. It decides which fields are requested
// from the report service, how the returned columns are renamed, which
// columns get merged during condensation, and the column layout of the
// condensed export.
package fieldmap

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Report-service field keys.
const (
	IdentifierKey     = "structureId"
	TitleKey          = "structureTitle"
	ResolutionKey     = "resolution"
	LigandNameKey     = "ligandName"
	ClassificationKey = "classification"
	MacromoleculeKey  = "macromoleculeType"
	EMDBKey           = "emdbId"
	PubmedKey         = "pubmedId"
	ReleaseDateKey    = "releaseDate"
	TechniqueKey      = "experimentalTechnique"
	UniprotKey        = "uniprotAcc"
	SourceKey         = "source"
	LigandSMILESKey   = "ligandSmiles"
)

// DiscriminatorColumn is the per-chain column the report service includes in
// every response even though it is never requested. It distinguishes the
// sub-rows of one structure and is dropped from the condensed output.
const DiscriminatorColumn = "chainId"

// Field pairs a report-service key with its display column name.
type Field struct {
	Key     string `yaml:"key"`
	Display string `yaml:"display"`
}

// Mapping is an ordered, immutable field configuration for one run.
type Mapping struct {
	fields []Field
	merge  []string
	layout []string
}

// Default returns the standard thirteen-field mapping.
func Default() Mapping {
	return Mapping{
		fields: []Field{
			{IdentifierKey, "PDB ID"},
			{TitleKey, "Structure Title"},
			{ResolutionKey, "Resolution"},
			{LigandNameKey, "Ligand Name(s)"},
			{ClassificationKey, "Classification"},
			{MacromoleculeKey, "Macromol. Type"},
			{EMDBKey, "EMDB ID"},
			{PubmedKey, "Pubmed ID"},
			{ReleaseDateKey, "Rel. Date"},
			{TechniqueKey, "Exp. Technique"},
			{UniprotKey, "Uniprot ID"},
			{SourceKey, "Source"},
			{LigandSMILESKey, "Ligand SMILES"},
		},
		merge: []string{
			"Pubmed ID",
			"Ligand Name(s)",
			"Source",
			"Macromol. Type",
			"Uniprot ID",
		},
		// Condensed exports move Source and Ligand SMILES next to the
		// ligand/classification columns instead of leaving them at the tail.
		layout: []string{
			"PDB ID",
			"Structure Title",
			"Resolution",
			"Ligand Name(s)",
			"Classification",
			"Source",
			"Ligand SMILES",
			"Macromol. Type",
			"EMDB ID",
			"Pubmed ID",
			"Rel. Date",
			"Exp. Technique",
			"Uniprot ID",
		},
	}
}

type mappingFile struct {
	Fields          []Field  `yaml:"fields"`
	Merge           []string `yaml:"merge,omitempty"`
	CondensedLayout []string `yaml:"condensed_layout,omitempty"`
}

// Load reads an alternate mapping from a YAML file. Merge and layout sections
// fall back to the loaded field order when omitted.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("read field config: %w", err)
	}
	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return Mapping{}, fmt.Errorf("parse field config %s: %w", path, err)
	}

	m := Mapping{fields: mf.Fields, merge: mf.Merge, layout: mf.CondensedLayout}
	if err := m.validate(); err != nil {
		return Mapping{}, fmt.Errorf("field config %s: %w", path, err)
	}
	if m.layout == nil {
		m.layout = m.Displays()
	}
	return m, nil
}

func (m Mapping) validate() error {
	if len(m.fields) == 0 {
		return fmt.Errorf("no fields declared")
	}
	seen := make(map[string]bool, len(m.fields))
	hasID := false
	for _, f := range m.fields {
		if f.Key == "" || f.Display == "" {
			return fmt.Errorf("field %+v: key and display must be non-empty", f)
		}
		if seen[f.Key] {
			return fmt.Errorf("duplicate field key %q", f.Key)
		}
		seen[f.Key] = true
		if f.Key == IdentifierKey {
			hasID = true
		}
	}
	if !hasID {
		return fmt.Errorf("mapping must include the %s field", IdentifierKey)
	}
	return nil
}

// Keys returns the report-service keys in declared order.
func (m Mapping) Keys() []string {
	keys := make([]string, len(m.fields))
	for i, f := range m.fields {
		keys[i] = f.Key
	}
	return keys
}

// QueryList returns the keys comma-joined for the custom-report request.
func (m Mapping) QueryList() string {
	return strings.Join(m.Keys(), ",")
}

// Displays returns the display column names in declared order.
func (m Mapping) Displays() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.Display
	}
	return out
}

// Rename maps a report-service key to its display name. Columns outside the
// mapping (such as chainId) pass through unchanged.
func (m Mapping) Rename(column string) string {
	for _, f := range m.fields {
		if f.Key == column {
			return f.Display
		}
	}
	return column
}

// displayOf returns the display name for key, or "" when the mapping does not
// carry the field.
func (m Mapping) displayOf(key string) string {
	for _, f := range m.fields {
		if f.Key == key {
			return f.Display
		}
	}
	return ""
}

// IdentifierColumn returns the display name of the structure-identifier column.
func (m Mapping) IdentifierColumn() string { return m.displayOf(IdentifierKey) }

// ResolutionColumn returns the display name of the resolution column, or ""
// when the mapping does not request resolutions.
func (m Mapping) ResolutionColumn() string { return m.displayOf(ResolutionKey) }

// LigandNameColumn returns the display name of the ligand-name column.
func (m Mapping) LigandNameColumn() string { return m.displayOf(LigandNameKey) }

// ReleaseDateColumn returns the display name of the release-date column.
func (m Mapping) ReleaseDateColumn() string { return m.displayOf(ReleaseDateKey) }

// MergeColumns returns the display names of the columns whose distinct values
// are concatenated per structure during condensation.
func (m Mapping) MergeColumns() []string {
	out := make([]string, len(m.merge))
	copy(out, m.merge)
	return out
}

// CondensedLayout returns the declared column order for the condensed export.
func (m Mapping) CondensedLayout() []string {
	out := make([]string, len(m.layout))
	copy(out, m.layout)
	return out
}
