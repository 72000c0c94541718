package socket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rievent_server/models"
)

func TestConnState_AddIsOncePerKey(t *testing.T) {
	cs := &connState{keys: map[string]bool{}}

	assert.True(t, cs.add("events:public"))
	// A repeated watch for the same key must not count twice; otherwise
	// leave and disconnect release fewer references than were taken.
	assert.False(t, cs.add("events:public"))

	assert.True(t, cs.remove("events:public"))
	assert.False(t, cs.remove("events:public"))

	// After a full release the key can be watched again.
	assert.True(t, cs.add("events:public"))
}

func TestConnState_DrainReleasesEachKeyOnce(t *testing.T) {
	cs := &connState{keys: map[string]bool{}}
	cs.add("a")
	cs.add("b")
	cs.add("a")

	assert.Len(t, cs.drain(), 2)
	assert.Empty(t, cs.drain())
}

func TestSubscriptionFor(t *testing.T) {
	key, collection, _, ok := subscriptionFor("rsvp", "E1")
	require.True(t, ok)
	assert.Equal(t, "rsvp:E1", key)
	assert.Equal(t, models.RsvpTable, collection)

	key, collection, _, ok = subscriptionFor("events", "")
	require.True(t, ok)
	assert.Equal(t, "events:public", key)
	assert.Equal(t, models.EventsTable, collection)

	_, _, _, ok = subscriptionFor("rsvp", "")
	assert.False(t, ok)
	_, _, _, ok = subscriptionFor("bogus", "x")
	assert.False(t, ok)
}
