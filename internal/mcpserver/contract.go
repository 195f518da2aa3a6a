package mcpserver

// PostFormatURI is the resource URI of PostFormat.
const PostFormatURI = "blog://post-format"

// PostFormat describes the document format the blog compiles, for LLM
// consumers that read or draft posts.
const PostFormat = `# Blog Post Format

Every post is a Markdown (` + "`.md`" + `) or MDX (` + "`.mdx`" + `) file under the content directory.

## Front-matter

` + "```" + `yaml
---
title: Human-readable title   # REQUIRED, non-empty
summary: One-line teaser      # OPTIONAL, defaults to a placeholder when absent
date: 2024-06-01              # REQUIRED, ISO-8601 date or timestamp
---
` + "```" + `

## Paths

The post path is the file location relative to the content directory with the
extension removed and separators normalized: ` + "`2024/hello.mdx`" + ` becomes
` + "`2024/hello`" + `, and ` + "`2024/hello/index.md`" + ` also becomes ` + "`2024/hello`" + `.
Two files with the same path are both rejected.

## Body

Standard Markdown with GitHub extensions and footnotes. Capitalized tags such as
` + "`<Callout kind=\"info\">...</Callout>`" + ` or ` + "`<Badge label=\"new\" />`" + ` are embedded
components; every opened component must be closed. Fenced code blocks should
declare a language (` + "```` ```rust ````" + `); blocks without one render as plaintext.
`
