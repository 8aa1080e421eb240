package models

// TokenType tags a BlockToken.
type TokenType int

const (
	TokenText TokenType = iota
	TokenLink
	TokenDateLink
	TokenCheckbox
	TokenQuery
	TokenProperty
)

func (t TokenType) String() string {
	switch t {
	case TokenLink:
		return "link"
	case TokenDateLink:
		return "date-link"
	case TokenCheckbox:
		return "checkbox"
	case TokenQuery:
		return "query"
	case TokenProperty:
		return "property"
	default:
		return "text"
	}
}

// Checkbox payloads.
const (
	CheckboxOpen = " "
	CheckboxDone = "x"
)

// BlockToken is one inline token of a line.
//
// Payload holds the text for Text, the target name for Link and DateLink,
// the inner query for Query, the raw "key:: value" text for Property and
// CheckboxOpen or CheckboxDone for Checkbox.
type BlockToken struct {
	Type    TokenType `json:"type"`
	Payload string    `json:"payload"`
}

// Text builds a text token.
func Text(s string) BlockToken { return BlockToken{Type: TokenText, Payload: s} }

// Link builds a link token.
func Link(target string) BlockToken { return BlockToken{Type: TokenLink, Payload: target} }

// DateLink builds a journal link token.
func DateLink(date string) BlockToken { return BlockToken{Type: TokenDateLink, Payload: date} }

// Query builds a query token.
func Query(q string) BlockToken { return BlockToken{Type: TokenQuery, Payload: q} }

// Checkbox builds a checkbox token.
func Checkbox(done bool) BlockToken {
	if done {
		return BlockToken{Type: TokenCheckbox, Payload: CheckboxDone}
	}
	return BlockToken{Type: TokenCheckbox, Payload: CheckboxOpen}
}

// PropertyToken builds a property token from its raw text.
func PropertyToken(raw string) BlockToken { return BlockToken{Type: TokenProperty, Payload: raw} }

// IsLinkLike reports whether the token creates a backlink edge.
func (t BlockToken) IsLinkLike() bool {
	return t.Type == TokenLink || t.Type == TokenDateLink
}

// Property is a key:: value pair found in a block.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RawBlock is one outline bullet before tokenization.
type RawBlock struct {
	Indentation int      `json:"indentation"`
	Lines       []string `json:"lines"`
}

// BlockContent is one logical line of a block.
type BlockContent struct {
	RawText string       `json:"raw_text"`
	Tokens  []BlockToken `json:"tokens"`
}

// ParsedBlock is a tokenized outline bullet.
type ParsedBlock struct {
	Indentation int            `json:"indentation"`
	Content     []BlockContent `json:"content"`
	Properties  []Property     `json:"properties"`
}

// Links returns the payloads of every Link token in the block.
func (b ParsedBlock) Links() []string {
	var out []string
	for _, c := range b.Content {
		for _, t := range c.Tokens {
			if t.Type == TokenLink {
				out = append(out, t.Payload)
			}
		}
	}
	return out
}

// ContainsReference reports whether the block links to name.
func (b ParsedBlock) ContainsReference(name string) bool {
	for _, c := range b.Content {
		for _, t := range c.Tokens {
			if t.Type == TokenLink && t.Payload == name {
				return true
			}
		}
	}
	return false
}

// FirstToken returns the first token of the first line.
func (b ParsedBlock) FirstToken() (BlockToken, bool) {
	if len(b.Content) == 0 || len(b.Content[0].Tokens) == 0 {
		return BlockToken{}, false
	}
	return b.Content[0].Tokens[0], true
}

// Property returns the value of the first property with key.
func (b ParsedBlock) Property(key string) (string, bool) {
	for _, p := range b.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the block.
func (b ParsedBlock) Clone() ParsedBlock {
	out := ParsedBlock{Indentation: b.Indentation}
	if b.Content != nil {
		out.Content = make([]BlockContent, len(b.Content))
		for i, c := range b.Content {
			out.Content[i] = BlockContent{RawText: c.RawText, Tokens: append([]BlockToken(nil), c.Tokens...)}
		}
	}
	if b.Properties != nil {
		out.Properties = append([]Property(nil), b.Properties...)
	}
	return out
}
