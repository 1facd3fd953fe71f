package schema

// typeFile is the serialised form of a document type.
type typeFile struct {
	Name         string         `json:"name" yaml:"name" toml:"name"`
	Title        string         `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Fields       []fieldFile    `json:"fields" yaml:"fields" toml:"fields"`
	Preview      *previewFile   `json:"preview,omitempty" yaml:"preview,omitempty" toml:"preview,omitempty"`
	Presentation map[string]any `json:"presentation,omitempty" yaml:"presentation,omitempty" toml:"presentation,omitempty"`
}

type fieldFile struct {
	Name         string         `json:"name" yaml:"name" toml:"name"`
	Type         string         `json:"type" yaml:"type" toml:"type"`
	Of           []fieldFile    `json:"of,omitempty" yaml:"of,omitempty" toml:"of,omitempty"`
	Fields       []fieldFile    `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Options      []string       `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	InitialValue any            `json:"initialValue,omitempty" yaml:"initialValue,omitempty" toml:"initialValue,omitempty"`
	Derive       *deriveFile    `json:"derive,omitempty" yaml:"derive,omitempty" toml:"derive,omitempty"`
	Generate     string         `json:"generate,omitempty" yaml:"generate,omitempty" toml:"generate,omitempty"`
	VisibleWhen  string         `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty" toml:"visibleWhen,omitempty"`
	Rules        []ruleFile     `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"`
	Preview      *previewFile   `json:"preview,omitempty" yaml:"preview,omitempty" toml:"preview,omitempty"`
	Presentation map[string]any `json:"presentation,omitempty" yaml:"presentation,omitempty" toml:"presentation,omitempty"`
}

type deriveFile struct {
	Using string   `json:"using" yaml:"using" toml:"using"`
	From  []string `json:"from" yaml:"from" toml:"from"`
}

type ruleFile struct {
	Required  bool        `json:"required,omitempty" yaml:"required,omitempty" toml:"required,omitempty"`
	MaxLength *int        `json:"maxLength,omitempty" yaml:"maxLength,omitempty" toml:"maxLength,omitempty"`
	Message   string      `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
	Custom    *customFile `json:"custom,omitempty" yaml:"custom,omitempty" toml:"custom,omitempty"`
}

type customFile struct {
	When    string `json:"when,omitempty" yaml:"when,omitempty" toml:"when,omitempty"`
	Assert  string `json:"assert" yaml:"assert" toml:"assert"`
	Message string `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
}

type previewFile struct {
	Select  map[string]string `json:"select" yaml:"select" toml:"select"`
	Prepare string            `json:"prepare,omitempty" yaml:"prepare,omitempty" toml:"prepare,omitempty"`
}
