package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Vertex addresses a point on the board, including a one-wide border
// sentinel ring so neighbor lookups never need a bounds check. PASS and
// RESIGN are pseudo-moves that never correspond to a board point.
type Vertex int32

// Pseudo-moves and the invalid sentinel.
const (
	PASS    Vertex = -1
	RESIGN  Vertex = -2
	NoVertex Vertex = -3
)

// MaxBoardSize is the largest board side length the core commits to
// supporting.
const MaxBoardSize = 25

// columnLetters skips 'I', matching Go/GTP vertex grammar.
const columnLetters = "ABCDEFGHJKLMNOPQRSTUVWXYZ"

// vertexOf maps a 1-based (col, row) board coordinate to the internal
// index within a board of side n (which includes the border ring).
func vertexOf(n int, col, row int) Vertex {
	stride := n + 2
	return Vertex(row*stride + col)
}

// coords returns the 1-based (col, row) board coordinate for v.
func coords(n int, v Vertex) (col, row int) {
	stride := n + 2
	return int(v) % stride, int(v) / stride
}

// ParseVertex parses GTP-style vertex text ("Q16", "pass", "resign") for a
// board of side n. Column letters skip 'I'; rows are 1-based.
func ParseVertex(n int, s string) (Vertex, error) {
	t := strings.TrimSpace(strings.ToUpper(s))
	switch t {
	case "PASS":
		return PASS, nil
	case "RESIGN":
		return RESIGN, nil
	case "":
		return NoVertex, fmt.Errorf("board: empty vertex")
	}

	letter := t[0:1]
	col := strings.Index(columnLetters, letter)
	if col < 0 {
		return NoVertex, fmt.Errorf("board: bad column in vertex %q", s)
	}
	row, err := strconv.Atoi(t[1:])
	if err != nil || row < 1 || row > n {
		return NoVertex, fmt.Errorf("board: bad row in vertex %q", s)
	}
	return vertexOf(n, col+1, n-row+1), nil
}

// VertexFromPolicyIndex maps a 0-based, row-major policy-vector index in
// [0, n*n) to the vertex it names. The policy head and GatherFeatures
// both use this same row-major layout, so this is the one place that
// indexing is defined.
func VertexFromPolicyIndex(n, idx int) Vertex {
	row := idx / n
	col := idx % n
	return vertexOf(n, col+1, row+1)
}

// PolicyIndex is the inverse of VertexFromPolicyIndex.
func PolicyIndex(n int, v Vertex) int {
	col, row := coords(n, v)
	return (row-1)*n + (col - 1)
}

// VertexString renders v as GTP-style text for a board of side n.
func VertexString(n int, v Vertex) string {
	switch v {
	case PASS:
		return "pass"
	case RESIGN:
		return "resign"
	case NoVertex:
		return "null"
	}
	col, row := coords(n, v)
	return fmt.Sprintf("%s%d", string(columnLetters[col-1]), n-row+1)
}
