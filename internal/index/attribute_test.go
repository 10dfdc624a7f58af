package index

import (
	"encoding/binary"
	"testing"

	"github.com/ramfuse/ramfs/internal/datacontainer"
	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAttr(name string, v int64) (*nodegraph.Node, *nodegraph.Attribute) {
	owner := &nodegraph.Node{ID: 7, Type: nodegraph.TypeFile}
	c := datacontainer.New(nil, 4096)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	_ = c.WriteAt(0, buf)
	return owner, &nodegraph.Attribute{Owner: owner, Name: name, Type: nodegraph.AttrInt64, Container: c}
}

func TestAttributeIndexAddedFindRemoved(t *testing.T) {
	idx := NewAttributeIndex("score", nodegraph.AttrInt64)
	owner, attr := newTestAttr("score", 42)

	idx.Added(owner, attr)
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, 42)
	r, ok := idx.Find(raw).GetNext()
	require.True(t, ok)
	assert.Equal(t, owner.ID, r.Node)

	idx.Removed(owner, attr)
	_, ok = idx.Find(raw).GetNext()
	assert.False(t, ok)
}

func TestAttributeIndexIgnoresOtherAttributeNames(t *testing.T) {
	idx := NewAttributeIndex("score", nodegraph.AttrInt64)
	owner, attr := newTestAttr("other", 42)

	idx.Added(owner, attr)
	assert.Equal(t, 0, idx.CountEntries())
}

func TestAttributeIndexOrdersNegativeBeforePositive(t *testing.T) {
	idx := NewAttributeIndex("score", nodegraph.AttrInt64)
	ownerNeg, attrNeg := newTestAttr("score", -5)
	ownerPos, attrPos := newTestAttr("score", 5)
	ownerNeg.ID, ownerPos.ID = 1, 2
	idx.Added(ownerPos, attrPos)
	idx.Added(ownerNeg, attrNeg)

	it := idx.GetIterator()
	r1, ok := it.GetNext()
	require.True(t, ok)
	assert.Equal(t, ownerNeg.ID, r1.Node)
	r2, ok := it.GetNext()
	require.True(t, ok)
	assert.Equal(t, ownerPos.ID, r2.Node)
}
