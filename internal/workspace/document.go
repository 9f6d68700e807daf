// Package workspace defines the persisted workspace artifact: a plain,
// JSON-serializable contract consumed by an external UI collaborator. The core never
// reads or writes it from disk and holds no serialization code; it only fills in a
// Document, whose JSON tags let the collaborator (de)serialize it, the same way the
// teacher's program.Program is filled in by the core and later consumed by an
// external writer.
package workspace

// VariableDescriptor is the UI-facing description of one analyzed Variable: its name,
// inferred C type, and a freeform description the user may edit.
type VariableDescriptor struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ParameterDescriptor describes one parameter of a described Function. The analysis
// core does not infer parameters; this exists purely for the UI collaborator to
// annotate by hand.
type ParameterDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FunctionDescriptor is the UI-facing description of one analyzed Function.
type FunctionDescriptor struct {
	Name        string                `json:"name"`
	ReturnType  string                `json:"return_type"`
	Parameters  []ParameterDescriptor `json:"parameters"`
	Description string                `json:"description"`
}

// Document is the opaque key-value artifact a GUI collaborator persists between
// sessions: which file is open, recently opened files, whether disassembly or
// decompilation has run, and the user's annotations for every named variable and
// function. Fields are keyed by name rather than address, since the UI operates on
// the names the emitter assigned.
type Document struct {
	CurrentFile    string                        `json:"current_file"`
	RecentFiles    []string                      `json:"recent_files"`
	IsDisassembled bool                          `json:"is_disassembled"`
	IsDecompiled   bool                          `json:"is_decompiled"`
	Variables      map[string]VariableDescriptor `json:"variables"`
	Functions      map[string]FunctionDescriptor `json:"functions"`
}

// New returns an empty Document ready to be filled in by the analysis pipeline.
func New() *Document {
	return &Document{
		RecentFiles: []string{},
		Variables:   map[string]VariableDescriptor{},
		Functions:   map[string]FunctionDescriptor{},
	}
}

// AddRecentFile records path as the current file and pushes it to the front of the
// recent-files list, dropping any earlier occurrence so each path appears at most once.
func (d *Document) AddRecentFile(path string) {
	d.CurrentFile = path

	filtered := make([]string, 0, len(d.RecentFiles)+1)
	filtered = append(filtered, path)
	for _, existing := range d.RecentFiles {
		if existing != path {
			filtered = append(filtered, existing)
		}
	}
	d.RecentFiles = filtered
}
