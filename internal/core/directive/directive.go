// Package directive scans host documents for embedded githubtracker blocks
// and splices rendered replacements back in by identity
package directive

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FenceTag marks a fenced block as ours
const FenceTag = "githubtracker"

// Block is one scanned directive occurrence.
// ID is the opaque identity token replacements are matched on; two blocks
// with identical fields still carry distinct IDs so both occurrences get
// their own replacement
type Block struct {
	ID     uuid.UUID
	Fields map[string]string

	// byte offsets of the whole fenced region within the source document
	start int
	end   int
}

// Scan locates every githubtracker fenced block in doc.
// Field lines are key: value pairs; lines without a colon are skipped,
// never fatal. Unknown keys are preserved for the config layer
func Scan(doc string) []Block {
	var blocks []Block

	offset := 0
	for offset < len(doc) {
		open := indexLine(doc, offset, "```"+FenceTag)
		if open < 0 {
			break
		}
		bodyStart := lineEnd(doc, open)
		closeAt := indexLine(doc, bodyStart, "```")
		if closeAt < 0 {
			break // unterminated fence, leave the tail untouched
		}
		end := lineEnd(doc, closeAt)

		blocks = append(blocks, Block{
			ID:     uuid.New(),
			Fields: parseFields(doc[bodyStart:closeAt]),
			start:  open,
			end:    end,
		})
		offset = end
	}
	return blocks
}

// Replace rebuilds doc substituting each block with its rendered text,
// matched by identity token. Blocks without a replacement keep their
// original source text
func Replace(doc string, blocks []Block, rendered map[uuid.UUID]string) string {
	if len(blocks) == 0 {
		return doc
	}
	ordered := make([]Block, len(blocks))
	copy(ordered, blocks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start < ordered[j].start })

	var b strings.Builder
	prev := 0
	for _, blk := range ordered {
		b.WriteString(doc[prev:blk.start])
		if text, ok := rendered[blk.ID]; ok {
			b.WriteString(text)
			if !strings.HasSuffix(text, "\n") {
				b.WriteByte('\n')
			}
		} else {
			b.WriteString(doc[blk.start:blk.end])
		}
		prev = blk.end
	}
	b.WriteString(doc[prev:])
	return b.String()
}

// parseFields reads key: value lines from a block body
func parseFields(body string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue // malformed line, skip it
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		fields[k] = strings.TrimSpace(v)
	}
	return fields
}

// indexLine finds the next line at or after offset whose trimmed content
// begins with prefix, returning the byte offset of that line's start
func indexLine(doc string, offset int, prefix string) int {
	for offset <= len(doc) {
		end := lineEnd(doc, offset)
		line := strings.TrimSpace(doc[offset:min(end, len(doc))])
		if strings.HasPrefix(line, prefix) {
			// an opening fence must not carry extra tag characters
			if prefix == "```"+FenceTag {
				if line == prefix {
					return offset
				}
			} else if line == "```" {
				return offset
			}
		}
		if end >= len(doc) {
			break
		}
		offset = end
	}
	return -1
}

// lineEnd returns the offset just past the newline terminating the line at start
func lineEnd(doc string, start int) int {
	if i := strings.IndexByte(doc[start:], '\n'); i >= 0 {
		return start + i + 1
	}
	return len(doc)
}
