package mcts

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArenaAllocAssignsSequentialIDs(t *testing.T) {
	a := newArena()
	id0, n0 := a.alloc()
	id1, n1 := a.alloc()

	assert.Equal(t, NodeID(0), id0)
	assert.Equal(t, NodeID(1), id1)
	assert.Equal(t, id0, n0.id)
	assert.Equal(t, id1, n1.id)
}

func TestArenaNodeReturnsStablePointer(t *testing.T) {
	a := newArena()
	id, n := a.alloc()
	n.move = 7

	again := a.node(id)
	assert.Equal(t, n, again)
	assert.Equal(t, n.move, again.move)
}

func TestArenaGrowsAcrossBlocks(t *testing.T) {
	a := newArena()
	var last NodeID
	for i := 0; i < arenaBlockSize+10; i++ {
		id, _ := a.alloc()
		last = id
	}
	assert.Equal(t, NodeID(arenaBlockSize+9), last)
	assert.Equal(t, int32(arenaBlockSize+10), a.size())
}

func TestArenaConcurrentAllocIsRaceFree(t *testing.T) {
	a := newArena()
	var wg sync.WaitGroup
	ids := make(chan NodeID, 1000)
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := a.alloc()
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[NodeID]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id allocated")
		seen[id] = true
	}
	assert.Len(t, seen, 1000)
}
