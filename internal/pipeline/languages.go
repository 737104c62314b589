package pipeline

// Rendering says how a code block's content is treated.
type Rendering int

const (
	// RenderSource highlights the block with its own language.
	RenderSource Rendering = iota
	// RenderPlain retags the block as plain text before highlighting.
	// Used for content that is not real source: diagrams, logs, listings.
	RenderPlain
	// RenderSample skips highlighting and marks the block as sample output.
	RenderSample
)

// PlainTag is the canonical tag plain-rendered blocks are retagged to.
const PlainTag = "plain"

// Language maps a codeblock-<tag> class to the label shown above the block.
type Language struct {
	Tag       string
	Label     string
	Rendering Rendering
}

var languageTable = []Language{
	{Tag: "c", Label: "C code"},
	{Tag: "cosmos", Label: "COSMOS interface definition", Rendering: RenderPlain},
	{Tag: "cpp", Label: "C++ code"},
	{Tag: "erlang", Label: "Erlang code"},
	{Tag: "elixir", Label: "Elixir code"},
	{Tag: "js", Label: "JavaScript code"},
	{Tag: "irc", Label: "IRC log", Rendering: RenderPlain},
	{Tag: "ps1", Label: "PowerShell session"},
	{Tag: "rust", Label: "Rust code"},
	{Tag: "sh", Label: "UNIX shell session"},
	{Tag: "plain", Label: "Plain text"},
	{Tag: "term", Label: "Text diagram", Rendering: RenderPlain},
	{Tag: "toml", Label: "TOML configuration"},
	{Tag: "xml", Label: "XML"},
	{Tag: "text", Label: "Plain text"},
	{Tag: "error", Label: "Compiler errors", Rendering: RenderPlain},
	{Tag: "console", Label: "Console output", Rendering: RenderSample},
}

var languageIndex = func() map[string]Language {
	idx := make(map[string]Language, len(languageTable))
	for _, l := range languageTable {
		if _, dup := idx[l.Tag]; dup {
			panic("pipeline: duplicate language tag " + l.Tag)
		}
		idx[l.Tag] = l
	}
	return idx
}()

// Languages returns the language table in declaration order.
func Languages() []Language {
	out := make([]Language, len(languageTable))
	copy(out, languageTable)
	return out
}

// LookupLanguage finds the language for a tag.
func LookupLanguage(tag string) (Language, bool) {
	l, ok := languageIndex[tag]
	return l, ok
}
