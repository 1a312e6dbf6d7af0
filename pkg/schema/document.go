package schema

// Document is the serialized form of a schema
type Document struct {
	Commands map[string]CommandDocument `json:"COMMANDS" yaml:"COMMANDS"`
}

// CommandDocument describes a single command
type CommandDocument struct {
	SpecCmd       string                    `json:"specCmd,omitempty" yaml:"specCmd,omitempty"`
	IDAttr        string                    `json:"idAttr,omitempty" yaml:"idAttr,omitempty"`
	IDRequired    bool                      `json:"idRequired,omitempty" yaml:"idRequired,omitempty"`
	NumericID     bool                      `json:"numericId,omitempty" yaml:"numericId,omitempty"`
	ForceOption   string                    `json:"forceOption,omitempty" yaml:"forceOption,omitempty"`
	SpecAttrs     map[string]string         `json:"specAttrs,omitempty" yaml:"specAttrs,omitempty"`
	DateAttrs     map[string]string         `json:"dateAttrs,omitempty" yaml:"dateAttrs,omitempty"`
	QueryOptions  map[string]OptionDocument `json:"queryOptions,omitempty" yaml:"queryOptions,omitempty"`
	ConfigOptions map[string]OptionDocument `json:"configOptions,omitempty" yaml:"configOptions,omitempty"`
	Output        *OutputDocument           `json:"output,omitempty" yaml:"output,omitempty"`
}

// OptionDocument describes a query or config option.
//
// Multiplicity is either 0, 1 or "n". An absent multiplicity means "n".
type OptionDocument struct {
	Type         []string    `json:"type,omitempty" yaml:"type,omitempty"`
	Option       string      `json:"option,omitempty" yaml:"option,omitempty"`
	Multiplicity interface{} `json:"multiplicity,omitempty" yaml:"multiplicity,omitempty"`
	BundledArgs  bool        `json:"bundledArgs,omitempty" yaml:"bundledArgs,omitempty"`
}

// OutputDocument describes how the output of a command maps to domain objects
type OutputDocument struct {
	P4ooType string `json:"p4ooType" yaml:"p4ooType"`
	IDAttr   string `json:"idAttr" yaml:"idAttr"`
}
