// internal/identity/identity_test.go
package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func TestFromContextUnresolvedByDefault(t *testing.T) {
	c := testContext()

	snap := FromContext(c)
	assert.Equal(t, StateUnresolved, snap.State)
	assert.False(t, snap.Authenticated())
	assert.Equal(t, uuid.Nil, snap.UserID)
}

func TestFromContextAnonymous(t *testing.T) {
	c := testContext()
	SetInContext(c, Anonymous())

	snap := FromContext(c)
	assert.Equal(t, StateAnonymous, snap.State)
	assert.False(t, snap.Authenticated())
}

func TestFromContextAuthenticated(t *testing.T) {
	c := testContext()
	userID := uuid.New()
	SetInContext(c, Authenticate(userID, "ada", "ada@example.com"))

	snap := FromContext(c)
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.True(t, snap.Authenticated())
	assert.Equal(t, userID, snap.UserID)
	assert.Equal(t, "ada", snap.Username)
	assert.Equal(t, "ada@example.com", snap.Email)
}

func TestFromContextIgnoresForeignValue(t *testing.T) {
	c := testContext()
	c.Set("identity_snapshot", "not a snapshot")

	snap := FromContext(c)
	assert.Equal(t, StateUnresolved, snap.State)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unresolved", StateUnresolved.String())
	assert.Equal(t, "anonymous", StateAnonymous.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
}

func TestBroadcasterCurrent(t *testing.T) {
	b := NewBroadcaster()
	assert.Equal(t, StateUnresolved, b.Current().State)

	b.Publish(Anonymous())
	assert.Equal(t, StateAnonymous, b.Current().State)

	userID := uuid.New()
	b.Publish(Authenticate(userID, "ada", "ada@example.com"))
	assert.Equal(t, userID, b.Current().UserID)
}

func TestBroadcasterDeliversToSubscribers(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()

	userID := uuid.New()
	b.Publish(Authenticate(userID, "ada", "ada@example.com"))

	select {
	case snap := <-ch:
		assert.Equal(t, userID, snap.UserID)
	default:
		t.Fatal("expected a buffered session change")
	}
}

func TestBroadcasterCancelStopsDelivery(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()

	cancel()
	cancel() // safe to call again

	_, open := <-ch
	assert.False(t, open, "cancel must close the channel")

	// Publishing after cancel must not panic on the closed channel.
	b.Publish(Anonymous())
}

func TestBroadcasterNeverBlocksOnSlowSubscriber(t *testing.T) {
	b := NewBroadcaster()
	_, cancel := b.Subscribe()
	defer cancel()

	// Overflow the subscriber's buffer; every publish must return.
	for i := 0; i < 100; i++ {
		b.Publish(Anonymous())
	}
	assert.Equal(t, StateAnonymous, b.Current().State)
}

func TestBroadcasterIndependentSubscribers(t *testing.T) {
	b := NewBroadcaster()
	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	cancel1()
	b.Publish(Anonymous())

	require.Len(t, ch2, 1, "remaining subscriber still receives")
	_, open := <-ch1
	assert.False(t, open)
}
