package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/starford/outliner/internal/models"
)

const (
	linkStart     = "[["
	linkEnd       = "]]"
	queryStart    = "{query: "
	queryEnd      = " }"
	propertyStart = ":: "
	propertyEnd   = " "

	checkboxOpenPrefix = "[ ] "
	checkboxDonePrefix = "[x] "

	// DateLinkPrefix marks a link to a journal page: [[journal::2024_01_31]].
	DateLinkPrefix = "journal::"

	wordBreak = ' '
)

// matcher tracks progress through a start sequence while inactive and
// through a stop sequence while active. A mismatch resets progress to 0.
type matcher struct {
	start, stop string
	index       int
	active      bool
}

func (m *matcher) reset() {
	m.index = 0
	m.active = false
}

func (m *matcher) feed(c rune) {
	pattern := m.start
	if m.active {
		pattern = m.stop
	}
	if rune(pattern[m.index]) == c {
		m.index++
	} else {
		m.index = 0
	}
	if m.index == len(pattern) {
		m.index = 0
		m.active = !m.active
	}
}

type tokenKind int

const (
	kindNone tokenKind = iota
	kindLink
	kindQuery
	kindProperty
)

// tokenizer is a single-pass state machine over one line. Offsets are byte
// offsets into line; all sequences it matches are ASCII.
type tokenizer struct {
	line string

	link     matcher
	query    matcher
	property matcher
	current  tokenKind

	pos        int // bytes consumed so far
	tokenStart int // start of the active token
	lastEnd    int // end of the last emitted token
	wordStart  int // start of the current word, candidate property key
	valueStart int // start of the current property value
	key        string

	tokens     []models.BlockToken
	properties []models.Property
}

func newTokenizer(line string) *tokenizer {
	return &tokenizer{
		line:     line,
		link:     matcher{start: linkStart, stop: linkEnd},
		query:    matcher{start: queryStart, stop: queryEnd},
		property: matcher{start: propertyStart, stop: propertyEnd},
	}
}

// Tokenize splits one line into typed tokens and returns the properties
// found on it. Unterminated links and queries degrade to text.
func Tokenize(line string) ([]models.BlockToken, []models.Property) {
	var prefix []models.BlockToken
	switch {
	case strings.HasPrefix(line, checkboxOpenPrefix):
		prefix = append(prefix, models.Checkbox(false))
		line = line[len(checkboxOpenPrefix):]
	case strings.HasPrefix(line, checkboxDonePrefix):
		prefix = append(prefix, models.Checkbox(true))
		line = line[len(checkboxDonePrefix):]
	}

	t := newTokenizer(line)
	t.tokens = prefix
	for i := 0; i < len(line); {
		c, width := utf8.DecodeRuneInString(line[i:])
		i += width
		t.pos = i
		t.feed(c)
	}
	t.finish()
	return t.tokens, t.properties
}

func (t *tokenizer) feed(c rune) {
	if t.current == kindNone {
		t.feedInactive(c)
		return
	}

	switch t.current {
	case kindLink:
		t.link.feed(c)
		if !t.link.active {
			payload := t.line[t.tokenStart+len(linkStart) : t.pos-len(linkEnd)]
			t.emit(linkToken(payload))
			t.closeToken(t.pos)
		}
	case kindQuery:
		t.query.feed(c)
		if !t.query.active {
			payload := t.line[t.tokenStart+len(queryStart) : t.pos-len(queryEnd)]
			t.emit(models.Query(payload))
			t.closeToken(t.pos)
		}
	case kindProperty:
		t.property.feed(c)
		if !t.property.active {
			end := t.pos - len(propertyEnd)
			t.emitProperty(end)
			t.closeToken(end)
		}
	}
}

func (t *tokenizer) feedInactive(c rune) {
	t.link.feed(c)
	if t.link.active {
		t.open(kindLink, t.pos-len(linkStart))
		return
	}
	t.query.feed(c)
	if t.query.active {
		t.open(kindQuery, t.pos-len(queryStart))
		return
	}
	t.property.feed(c)
	if t.property.active {
		start := max(t.wordStart, t.lastEnd)
		t.key = t.line[start : t.pos-len(propertyStart)]
		t.valueStart = t.pos
		t.open(kindProperty, start)
		return
	}
	if c == wordBreak {
		t.wordStart = t.pos
	}
}

// open flushes the pending text and makes kind the active token.
func (t *tokenizer) open(kind tokenKind, start int) {
	t.tokenStart = start
	if t.lastEnd != start {
		t.emit(models.Text(t.line[t.lastEnd:start]))
	}
	t.current = kind
}

func (t *tokenizer) closeToken(end int) {
	t.current = kindNone
	t.lastEnd = end
	t.wordStart = t.pos
	t.link.reset()
	t.query.reset()
	t.property.reset()
}

func (t *tokenizer) emit(tok models.BlockToken) {
	t.tokens = append(t.tokens, tok)
}

func (t *tokenizer) emitProperty(end int) {
	t.emit(models.PropertyToken(t.line[t.tokenStart:end]))
	t.properties = append(t.properties, models.Property{
		Key:   t.key,
		Value: t.line[t.valueStart:end],
	})
}

func (t *tokenizer) finish() {
	if t.current == kindProperty {
		t.emitProperty(len(t.line))
		return
	}
	if rest := t.line[max(t.tokenStart, t.lastEnd):]; rest != "" {
		t.emit(models.Text(rest))
	}
}

func linkToken(payload string) models.BlockToken {
	if date, ok := strings.CutPrefix(payload, DateLinkPrefix); ok {
		return models.DateLink(date)
	}
	return models.Link(payload)
}
