package hier

import (
	"strconv"
	"strings"
)

// Path is a structural path: a sequence of node-name steps from the
// document root, each optionally carrying a sibling index among siblings of
// the same name ("thing[2]"). The first sibling's index is implicit, so
// "thing" and "thing[1]" denote the same step.
//
// Absolute paths start with "/" and are stored with a leading empty chunk.
// Relative paths may contain ".." and "." steps.
//
// Examples:
//   - "/list/thing" → first thing child of the root list
//   - "/list/thing[2]" → second thing child
//   - "../thing" → sibling named thing, relative to the current node
type Path struct {
	chunks []string
}

var dot = Path{chunks: []string{"."}}

// ParsePath parses a path string. Explicit "[1]" indexes are normalized away.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	parts := strings.Split(s, "/")
	chunks := make([]string, len(parts))
	for i, p := range parts {
		chunks[i] = normalizeChunk(p)
	}
	return Path{chunks: chunks}
}

// NewPath builds a path from already formatted chunks.
func NewPath(chunks ...string) Path {
	res := make([]string, len(chunks))
	for i, c := range chunks {
		res[i] = normalizeChunk(c)
	}
	return Path{chunks: res}
}

func normalizeChunk(c string) string {
	if strings.HasSuffix(c, "[1]") && len(c) > 3 {
		return c[:len(c)-3]
	}
	return c
}

// String formats p, e.g. "/list/thing[2]".
func (p Path) String() string {
	if len(p.chunks) == 1 && p.chunks[0] == "" {
		return "/"
	}
	return strings.Join(p.chunks, "/")
}

// IsAbsolute reports whether p starts at the document root.
func (p Path) IsAbsolute() bool {
	return len(p.chunks) > 0 && p.chunks[0] == ""
}

// Len returns the number of steps, including the root chunk of an absolute
// path.
func (p Path) Len() int {
	return len(p.chunks)
}

// Equal reports whether p and o denote the same path.
func (p Path) Equal(o Path) bool {
	if len(p.chunks) != len(o.chunks) {
		return false
	}
	for i := range p.chunks {
		if p.chunks[i] != o.chunks[i] {
			return false
		}
	}
	return true
}

// IsAncestor reports whether p is child or an ancestor of child.
func (p Path) IsAncestor(child Path) bool {
	if len(child.chunks) < len(p.chunks) {
		return false
	}
	for i := range p.chunks {
		if p.chunks[i] != child.chunks[i] {
			return false
		}
	}
	return true
}

// RelativeTo returns the relative path leading from p to target.
func (p Path) RelativeTo(target Path) Path {
	div := divergence(p.chunks, target.chunks)
	res := make([]string, 0, len(p.chunks)+len(target.chunks)-2*div)
	for i := div; i < len(p.chunks); i++ {
		res = append(res, "..")
	}
	res = append(res, target.chunks[div:]...)
	if len(res) == 0 {
		return dot
	}
	return Path{chunks: res}
}

func divergence(a, b []string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// Apply resolves rel against p. Absolute paths are returned unchanged.
func (p Path) Apply(rel Path) Path {
	if rel.IsAbsolute() {
		return rel
	}
	stack := make([]string, len(p.chunks), len(p.chunks)+len(rel.chunks))
	copy(stack, p.chunks)
	for _, c := range rel.chunks {
		switch c {
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ".":
		default:
			stack = append(stack, c)
		}
	}
	return Path{chunks: stack}
}

// Explicit returns p with every implicit first-sibling index written out,
// e.g. "/list[1]/thing[1]".
func (p Path) Explicit() string {
	var b strings.Builder
	for i, c := range p.chunks {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(c)
		if c == "" || c == "." || c == ".." || strings.HasSuffix(c, "]") {
			continue
		}
		b.WriteString("[1]")
	}
	return b.String()
}

// Step returns the name and sibling index of the i'th chunk.
func (p Path) Step(i int) (name string, index int) {
	return splitChunk(p.chunks[i])
}

func splitChunk(c string) (string, int) {
	if !strings.HasSuffix(c, "]") {
		return c, 1
	}
	open := strings.LastIndexByte(c, '[')
	if open <= 0 {
		return c, 1
	}
	n, err := strconv.Atoi(c[open+1 : len(c)-1])
	if err != nil || n < 1 {
		return c, 1
	}
	return c[:open], n
}

func formatChunk(name string, index int) string {
	if index <= 1 {
		return name
	}
	return name + "[" + strconv.Itoa(index) + "]"
}
