package board

// HistoryPlanes is how many own/opponent occupancy planes the featurizer
// produces (historyDepth each).
const HistoryPlanes = historyDepth

// FeaturePlaneCount is the total number of 18 N×N binary planes: 8
// own-color occupancy, 8 opponent occupancy, 2 constant side-to-move.
const FeaturePlaneCount = 2*historyDepth + 2

// GatherFeatures walks g backward up to historyDepth-1 times collecting
// own/opponent occupancy planes (current position plus history), then
// walks forward again to restore g exactly as it found it: the returned
// state is byte-identical to the one passed in. Missing history at the
// start of the game is left zero.
func GatherFeatures(g *GameState) []float32 {
	n := g.Current().Size()
	planeSize := n * n
	planes := make([]float32, FeaturePlaneCount*planeSize)

	toMove := g.Current().ToMove()

	fillPlane(planes, 0, g.Current(), toMove)
	fillPlane(planes, historyDepth*planeSize, g.Current(), toMove.Other())

	// Undo clears the resignation markers and Forward does not set them
	// again, so they are saved here and put back after the walk.
	resigned, resignedColor, lastWasResign := g.resigned, g.resignedColor, g.lastWasResign

	depth := 0
	for depth < historyDepth-1 && g.Undo() {
		depth++
		fillPlane(planes, depth*planeSize, g.Current(), toMove)
		fillPlane(planes, (historyDepth+depth)*planeSize, g.Current(), toMove.Other())
	}
	for i := 0; i < depth; i++ {
		g.Forward()
	}
	g.resigned, g.resignedColor, g.lastWasResign = resigned, resignedColor, lastWasResign

	base := 2 * historyDepth * planeSize
	var blackToMove, whiteToMove float32
	if toMove == Black {
		blackToMove = 1
	} else {
		whiteToMove = 1
	}
	for i := 0; i < planeSize; i++ {
		planes[base+i] = blackToMove
		planes[base+planeSize+i] = whiteToMove
	}
	return planes
}

// fillPlane marks, at dst[offset:offset+n*n], every point occupied by
// color on board b.
func fillPlane(dst []float32, offset int, b *Board, color Color) {
	n := b.Size()
	for row := 1; row <= n; row++ {
		for col := 1; col <= n; col++ {
			idx := (row-1)*n + (col - 1)
			if b.At(vertexOf(n, col, row)) == color {
				dst[offset+idx] = 1
			}
		}
	}
}
