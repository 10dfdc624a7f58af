package index

import (
	"testing"

	"github.com/ramfuse/ramfs/internal/listenerbus"
	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectorySpecialIndicesAlwaysFindable(t *testing.T) {
	d := NewDirectory(listenerbus.New[*nodegraph.Node](), listenerbus.New[*nodegraph.Entry]())

	for _, name := range []string{"name", "size", "last_modified"} {
		_, ok := d.FindIndex(name)
		assert.True(t, ok, name)
	}
}

func TestCreateIndexRejectsSpecialNames(t *testing.T) {
	d := NewDirectory(listenerbus.New[*nodegraph.Node](), listenerbus.New[*nodegraph.Entry]())
	_, err := d.CreateIndex("size", nodegraph.AttrUint64)
	assert.Error(t, err)
}

func TestCreateIndexRejectsDuplicate(t *testing.T) {
	d := NewDirectory(listenerbus.New[*nodegraph.Node](), listenerbus.New[*nodegraph.Entry]())
	_, err := d.CreateIndex("score", nodegraph.AttrInt64)
	require.NoError(t, err)
	_, err = d.CreateIndex("score", nodegraph.AttrInt64)
	assert.Error(t, err)
}

func TestDeleteIndexRemovesAttributeIndex(t *testing.T) {
	d := NewDirectory(listenerbus.New[*nodegraph.Node](), listenerbus.New[*nodegraph.Entry]())
	_, err := d.CreateIndex("score", nodegraph.AttrInt64)
	require.NoError(t, err)

	require.NoError(t, d.DeleteIndex("score"))
	_, ok := d.FindAttributeIndex("score")
	assert.False(t, ok)
}

func TestDeleteIndexRejectsSpecialNames(t *testing.T) {
	d := NewDirectory(listenerbus.New[*nodegraph.Node](), listenerbus.New[*nodegraph.Entry]())
	assert.Error(t, d.DeleteIndex("name"))
}

func TestNotifyAttributeAddedRoutesToMatchingIndex(t *testing.T) {
	d := NewDirectory(listenerbus.New[*nodegraph.Node](), listenerbus.New[*nodegraph.Entry]())
	_, err := d.CreateIndex("score", nodegraph.AttrInt64)
	require.NoError(t, err)

	owner, attr := newTestAttr("score", 9)
	d.NotifyAttributeAdded(owner, attr)

	idx, ok := d.FindAttributeIndex("score")
	require.True(t, ok)
	assert.Equal(t, 1, idx.CountEntries())
}
