package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveQueryEmitsCreatedOnFirstMatch(t *testing.T) {
	lq := NewLiveQuery(MustCompile(`size>10`))
	lq.Evaluate(1, mapResolver{"size": {Type: ValInt64, Int: 20}}, true)

	select {
	case u := <-lq.Updates():
		assert.Equal(t, EntryCreated, u.Kind)
		assert.EqualValues(t, 1, u.Node)
	default:
		t.Fatal("expected an update")
	}
}

func TestLiveQueryEmitsRemovedOnNodeDeletion(t *testing.T) {
	lq := NewLiveQuery(MustCompile(`size>10`))
	lq.Evaluate(1, mapResolver{"size": {Type: ValInt64, Int: 20}}, true)
	<-lq.Updates()

	lq.Evaluate(1, nil, false)
	u := <-lq.Updates()
	assert.Equal(t, EntryRemoved, u.Kind)
}

func TestLiveQueryNoDuplicateUpdatesWhileStillMatching(t *testing.T) {
	lq := NewLiveQuery(MustCompile(`size>10`))
	lq.Evaluate(1, mapResolver{"size": {Type: ValInt64, Int: 20}}, true)
	<-lq.Updates()

	lq.Evaluate(1, mapResolver{"size": {Type: ValInt64, Int: 30}}, true)
	select {
	case <-lq.Updates():
		t.Fatal("did not expect another update while still matching")
	default:
	}
}

func TestRegistryNotifiesAllQueries(t *testing.T) {
	r := NewRegistry()
	lq1 := NewLiveQuery(MustCompile(`size>10`))
	lq2 := NewLiveQuery(MustCompile(`size>100`))
	r.Register(lq1)
	r.Register(lq2)
	require.Equal(t, 2, r.Len())

	r.NotifyNode(1, mapResolver{"size": {Type: ValInt64, Int: 50}}, true)
	u1 := <-lq1.Updates()
	assert.Equal(t, EntryCreated, u1.Kind)
	select {
	case <-lq2.Updates():
		t.Fatal("lq2 should not match size 50")
	default:
	}

	r.Unregister(lq1.Token)
	assert.Equal(t, 1, r.Len())
}
