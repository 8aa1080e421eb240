// Package query parses and executes the queries embedded in blocks as
// {query: <kind> key:"value" ... display:"<display>" }.
package query

import (
	"fmt"
	"strings"
)

// Kind selects the query executor.
type Kind int

const (
	Unknown Kind = iota
	PageHierarchy
	Todos
	ReferencesTo
	Blocks
	Board
	PlotProperty
	InsertFileContent
	TodoProgress
)

var kindNames = map[Kind]string{
	PageHierarchy:     "page-hierarchy",
	Todos:             "todos",
	ReferencesTo:      "references-to",
	Blocks:            "blocks",
	Board:             "board",
	PlotProperty:      "plot-property",
	InsertFileContent: "insert-file-content",
	TodoProgress:      "todo-progress",
}

// kindOrder lists the kinds in the order names are matched and listed.
var kindOrder = []Kind{
	PageHierarchy, ReferencesTo, Todos, TodoProgress, Blocks, Board, PlotProperty, InsertFileContent,
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Display selects how a query result is rendered.
type Display int

const (
	DisplayNone Display = iota
	DisplayInplaceList
	DisplayReferencedList
	DisplayCount
	DisplayParagraphs
	DisplayCodeBlock
	DisplayInlineText
	DisplayVideo
	DisplayAudio
	DisplayLink
	DisplayLinechart
	DisplayUnknown
)

var displayNames = map[Display]string{
	DisplayInplaceList:    "inplace-list",
	DisplayReferencedList: "referenced-list",
	DisplayCount:          "count",
	DisplayParagraphs:     "paragraphs",
	DisplayCodeBlock:      "code-block",
	DisplayInlineText:     "inline-text",
	DisplayVideo:          "video",
	DisplayAudio:          "audio",
	DisplayLink:           "link",
	DisplayLinechart:      "linechart",
}

func (d Display) String() string {
	if n, ok := displayNames[d]; ok {
		return n
	}
	if d == DisplayNone {
		return "none"
	}
	return "unknown"
}

func parseDisplay(s string) Display {
	for d, n := range displayNames {
		if n == s {
			return d
		}
	}
	return DisplayUnknown
}

// Parameter names.
const (
	ParamDisplay      = "display"
	ParamRoot         = "root"
	ParamTag          = "tag"
	ParamState        = "state"
	ParamTarget       = "target"
	ParamTargetFile   = "target-file"
	ParamTitle        = "title"
	ParamColumnKey    = "columnKey"
	ParamColumnValues = "columnValues"
	ParamPriorityKey  = "priorityKey"
	ParamPropertyKey  = "propertyKey"
	ParamLabel        = "label"
	ParamCaption      = "caption"
	ParamWidth        = "width"
	ParamHeight       = "height"
	ParamStartingAt   = "startingAt"
	ParamEndingAt     = "endingAt"
)

// params lists, per kind, the parameters in the only order they are
// accepted. The blocks query reads tag but stores it as target.
var params = map[Kind][]string{
	PageHierarchy:     {ParamRoot},
	Todos:             {ParamTag, ParamState},
	ReferencesTo:      {ParamTarget},
	Blocks:            {ParamTag},
	Board:             {ParamTitle, ParamTag, ParamColumnKey, ParamColumnValues, ParamPriorityKey},
	PlotProperty:      {ParamPropertyKey, ParamLabel, ParamCaption, ParamWidth, ParamHeight, ParamStartingAt, ParamEndingAt},
	InsertFileContent: {ParamTargetFile},
	TodoProgress:      {ParamTag},
}

// Query is a parsed embedded query.
type Query struct {
	Kind    Kind
	Display Display
	// RawDisplay is the display value as written.
	RawDisplay string
	Args       map[string]string
}

// Arg returns the value of parameter key.
func (q Query) Arg(key string) string { return q.Args[key] }

// ParseError describes why a query could not be parsed.
type ParseError struct {
	Expected string
	Got      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, got '%s'", e.Expected, e.Got)
}

// Parse parses the payload of a query token. A payload that names no
// known kind parses to a query of kind Unknown.
func Parse(raw string) (Query, error) {
	s := strings.TrimSpace(raw)
	kind := Unknown
	for _, k := range kindOrder {
		if rest, ok := strings.CutPrefix(s, k.String()); ok {
			kind, s = k, strings.TrimSpace(rest)
			break
		}
	}
	if kind == Unknown {
		return Query{Kind: Unknown, Display: DisplayUnknown}, nil
	}

	q := Query{Kind: kind, Args: make(map[string]string, len(params[kind]))}
	for _, key := range params[kind] {
		value, rest, err := parseProperty(s, key)
		if err != nil {
			return Query{}, err
		}
		if kind == Blocks && key == ParamTag {
			key = ParamTarget
		}
		q.Args[key] = value
		s = rest
	}
	if kind == TodoProgress {
		return q, nil
	}

	display, _, err := parseProperty(s, ParamDisplay)
	if err != nil {
		return Query{}, err
	}
	q.RawDisplay = display
	q.Display = parseDisplay(display)
	return q, nil
}

// parseProperty consumes key:"value" from the start of input and returns
// the value and the trimmed remainder.
func parseProperty(input, key string) (value, rest string, err error) {
	prefix := key + `:"`
	after, ok := strings.CutPrefix(input, prefix)
	if !ok {
		return "", "", &ParseError{Expected: "parameter '" + prefix + "'", Got: input}
	}
	value, rest, ok = strings.Cut(after, `"`)
	if !ok {
		return "", "", &ParseError{Expected: "closing quote after '" + prefix + "'", Got: input}
	}
	return value, strings.TrimSpace(rest), nil
}

// AvailableKinds lists the names of all query kinds.
func AvailableKinds() string {
	names := make([]string, len(kindOrder))
	for i, k := range kindOrder {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}
