package mcpserver

// PageFormatContract describes the outline markup that LLM consumers
// should follow when writing pages.
const PageFormatContract = `# Outliner Page Format

A page is an outline: a sequence of blocks written as Markdown list items.

## Structure

` + "```" + `markdown
- First top-level block
	- Nested block, indented by one tab
- [ ] an open task
- [x] a finished task
- a block with properties status:: doing prio:: A
` + "```" + `

## Rules

1. **Every block starts with "- ".** Children are indented one tab deeper
   than their parent. Continuation lines belong to the block above them.
2. **Page links** use double brackets: ` + "`" + `[[other page]]` + "`" + `. Hierarchical pages use
   slashes: ` + "`" + `[[project/alpha]]` + "`" + `. A link also tags every nested block below it.
3. **Journal links** name the day: ` + "`" + `[[journal::2025_01_20]]` + "`" + `.
4. **Todos** start a block with ` + "`" + `[ ] ` + "`" + ` (open) or ` + "`" + `[x] ` + "`" + ` (done), followed by one space.
5. **Properties** are ` + "`" + `key:: value` + "`" + ` pairs inside a block.
6. **Queries** are written ` + "`" + `{query: todos tag:"project" state:"todo" display:"inplace-list" }` + "`" + `.
   Parameters must appear in the order each query kind declares and end with ` + "`" + `display` + "`" + `.
7. **Encoding** is UTF-8 with a trailing newline.

## Assets

- Upload files with the ` + "`" + `upload_asset` + "`" + ` tool. It returns a ` + "`" + `markdown` + "`" + ` field
  ready to paste into a block: an image for pictures and a link for everything else.
- Assets are stored flat in the graph's ` + "`" + `assets/` + "`" + ` folder and referenced as
  ` + "`" + `/assets/filename` + "`" + `.
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.

## Example

` + "```" + `markdown
- Weekly standup [[journal::2025_01_20]] [[meeting]]
	- attendees:: alice
	- [ ] review the [[design doc]]
	- ![Whiteboard](/assets/standup.jpg)
` + "```" + `
`
