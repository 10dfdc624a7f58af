package index

import (
	"testing"

	"github.com/ramfuse/ramfs/internal/listenerbus"
	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(parentID, targetID nodegraph.NodeID, name string) *nodegraph.Entry {
	parent := &nodegraph.Node{ID: parentID, Type: nodegraph.TypeDirectory, Dir: &nodegraph.DirectoryData{}}
	target := &nodegraph.Node{ID: targetID, Type: nodegraph.TypeDirectory, Dir: &nodegraph.DirectoryData{}}
	return &nodegraph.Entry{Parent: parent, Name: name, Target: target}
}

func TestNameIndexTracksAddAndRemove(t *testing.T) {
	bus := listenerbus.New[*nodegraph.Entry]()
	idx := NewNameIndex(bus)

	e := newTestEntry(1, 2, "foo")
	bus.Dispatch(listenerbus.Added, e)

	it := idx.Find("foo")
	r, ok := it.GetNext()
	require.True(t, ok)
	assert.Equal(t, nodegraph.NodeID(2), r.Node)
	_, ok = it.GetNext()
	assert.False(t, ok)

	bus.Dispatch(listenerbus.Removed, e)
	it = idx.Find("foo")
	_, ok = it.GetNext()
	assert.False(t, ok)
}

func TestNameIndexFindDoesNotMatchLongerNames(t *testing.T) {
	bus := listenerbus.New[*nodegraph.Entry]()
	idx := NewNameIndex(bus)

	bus.Dispatch(listenerbus.Added, newTestEntry(1, 2, "foo"))
	bus.Dispatch(listenerbus.Added, newTestEntry(1, 3, "foobar"))

	it := idx.Find("foo")
	var got []nodegraph.NodeID
	for {
		r, ok := it.GetNext()
		if !ok {
			break
		}
		got = append(got, r.Node)
	}
	assert.Equal(t, []nodegraph.NodeID{2}, got)
}

func TestNameIndexSameNameDifferentParentsBothFound(t *testing.T) {
	bus := listenerbus.New[*nodegraph.Entry]()
	idx := NewNameIndex(bus)

	bus.Dispatch(listenerbus.Added, newTestEntry(1, 10, "dup"))
	bus.Dispatch(listenerbus.Added, newTestEntry(2, 20, "dup"))

	it := idx.Find("dup")
	var got []nodegraph.NodeID
	for {
		r, ok := it.GetNext()
		if !ok {
			break
		}
		got = append(got, r.Node)
	}
	assert.ElementsMatch(t, []nodegraph.NodeID{10, 20}, got)
}
