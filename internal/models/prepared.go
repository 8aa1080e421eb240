package models

// ReferencedBlock is a block surfaced somewhere other than its own page,
// for example as a query result.
type ReferencedBlock struct {
	Block     ParsedBlock    `json:"block"`
	Reference BlockReference `json:"reference"`
}

// QueryResult is the output of executing one embedded query.
type QueryResult struct {
	InplaceMarkdown   string            `json:"inplace_markdown"`
	Referenced        []ReferencedBlock `json:"referenced"`
	HasDynamicContent bool              `json:"has_dynamic_content"`
}

// PreparedContent pairs the original markup of a block with its rendered markdown.
type PreparedContent struct {
	OriginalText     string `json:"original_text"`
	PreparedMarkdown string `json:"prepared_markdown"`
}

// PreparedReferencedBlock is a rendered ReferencedBlock.
type PreparedReferencedBlock struct {
	Content   PreparedContent `json:"content"`
	Reference BlockReference  `json:"reference"`
}

// PreparedBlock is the display form of one block.
type PreparedBlock struct {
	Indentation       int                       `json:"indentation"`
	Content           PreparedContent           `json:"content"`
	Referenced        []PreparedReferencedBlock `json:"referenced_markdown"`
	HasDynamicContent bool                      `json:"has_dynamic_content"`
}

// PreparedPage is the display form of a page.
type PreparedPage struct {
	Blocks []PreparedBlock `json:"blocks"`
}
