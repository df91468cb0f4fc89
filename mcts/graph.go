package mcts

import (
	"fmt"

	"github.com/awalterschulze/gographviz"

	"github.com/sente-ai/gozero/board"
)

// DOT renders the live tree rooted at the current root as Graphviz DOT
// text, down to maxDepth plies, for interactive inspection during
// development — a debugging aid rather than anything the search itself
// consumes.
func (t *Tree) DOT(boardSize, maxDepth int) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("tree"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	if t.root == NilNode {
		return g.String(), nil
	}

	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		n := t.node(id)
		name := nodeGraphName(id)
		label := fmt.Sprintf(`"%s (n=%d v=%.3f p=%.3f)"`,
			board.VertexString(boardSize, n.Move()), n.Visits(), n.Q(n.Color().Other()), n.Prior())
		g.AddNode("tree", name, map[string]string{"label": label})

		if depth >= maxDepth || !n.IsExpanded() {
			return
		}
		for _, childID := range n.Children() {
			child := t.node(childID)
			if child.Visits() == 0 {
				continue
			}
			g.AddEdge(name, nodeGraphName(childID), true, nil)
			walk(childID, depth+1)
		}
	}
	walk(t.root, 0)

	return g.String(), nil
}

func nodeGraphName(id NodeID) string {
	return fmt.Sprintf("n%d", id)
}
