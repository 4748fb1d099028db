package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/localdate/internal/common"
	"github.com/dmitrijs2005/localdate/internal/models"
	"github.com/dmitrijs2005/localdate/internal/store"
)

func loginAs(t *testing.T, st *store.Store, username string) *IdentityService {
	t.Helper()
	svc := NewIdentityService(st, testLogger(), 0)
	_, err := svc.Login(context.Background(), username)
	require.NoError(t, err)
	return svc
}

func otherUser(t *testing.T, st *store.Store, username string) *models.User {
	t.Helper()
	u, err := st.Users.Create(context.Background(), username, models.DefaultSettings())
	require.NoError(t, err)
	return u
}

func TestConversation_SetActiveChatLoadsAndMarksRead(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	identity := loginAs(t, st, "alice")
	alice := identity.CurrentUser()
	bob := otherUser(t, st, "bob")

	inbound, err := st.Messages.Send(ctx, bob.ID, alice.ID, "hey alice")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond) // distinct millisecond timestamps
	outbound, err := st.Messages.Send(ctx, alice.ID, bob.ID, "hey bob")
	require.NoError(t, err)

	c := NewConversationService(identity, st, testLogger(), time.Minute)
	t.Cleanup(c.Close)

	require.NoError(t, c.SetActiveChat(ctx, bob.ID))
	assert.Equal(t, bob.ID, c.ActiveChat())

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, inbound.ID, msgs[0].ID, "chronological order")
	assert.Equal(t, outbound.ID, msgs[1].ID)
	assert.True(t, msgs[0].Read, "inbound unread message marked read on load")
	assert.False(t, msgs[1].Read, "own messages untouched")

	// Durable too, not just local.
	stored, err := st.Messages.GetBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, stored[0].Read)
}

func TestConversation_SendAppendsOptimistically(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	identity := loginAs(t, st, "alice")
	bob := otherUser(t, st, "bob")

	c := NewConversationService(identity, st, testLogger(), time.Minute)
	t.Cleanup(c.Close)
	require.NoError(t, c.SetActiveChat(ctx, bob.ID))

	m, err := c.Send(ctx, bob.ID, "hello")
	require.NoError(t, err)

	msgs := c.Messages()
	require.Len(t, msgs, 1, "visible immediately, before any poll")
	assert.Equal(t, m.ID, msgs[0].ID)
}

func TestConversation_SendValidation(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	identity := loginAs(t, st, "alice")
	bob := otherUser(t, st, "bob")

	c := NewConversationService(identity, st, testLogger(), time.Minute)
	t.Cleanup(c.Close)

	_, err := c.Send(ctx, bob.ID, "   ")
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.NotEmpty(t, c.Err())
}

func TestConversation_SendAnonymous(t *testing.T) {
	st := setupStore(t)
	identity := NewIdentityService(st, testLogger(), 0)

	c := NewConversationService(identity, st, testLogger(), time.Minute)
	t.Cleanup(c.Close)

	_, err := c.Send(context.Background(), "someone", "hi")
	require.ErrorIs(t, err, common.ErrorNotLoggedIn)
}

func TestConversation_PollPicksUpNewMessages(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	identity := loginAs(t, st, "alice")
	alice := identity.CurrentUser()
	bob := otherUser(t, st, "bob")

	c := NewConversationService(identity, st, testLogger(), 20*time.Millisecond)
	t.Cleanup(c.Close)
	require.NoError(t, c.SetActiveChat(ctx, bob.ID))
	require.Empty(t, c.Messages())

	// Written behind the service's back, as another tab would.
	_, err := st.Messages.Send(ctx, bob.ID, alice.ID, "surprise")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		msgs := c.Messages()
		return len(msgs) == 1 && msgs[0].Read
	}, 2*time.Second, 10*time.Millisecond, "poller must deliver and mark read")
}

func TestConversation_SwitchingChatsReplacesState(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	identity := loginAs(t, st, "alice")
	alice := identity.CurrentUser()
	bob := otherUser(t, st, "bob")
	carol := otherUser(t, st, "carol")

	_, err := st.Messages.Send(ctx, bob.ID, alice.ID, "from bob")
	require.NoError(t, err)
	_, err = st.Messages.Send(ctx, carol.ID, alice.ID, "from carol")
	require.NoError(t, err)

	c := NewConversationService(identity, st, testLogger(), time.Minute)
	t.Cleanup(c.Close)

	require.NoError(t, c.SetActiveChat(ctx, bob.ID))
	require.Len(t, c.Messages(), 1)
	assert.Equal(t, "from bob", c.Messages()[0].Content)

	require.NoError(t, c.SetActiveChat(ctx, carol.ID))
	require.Len(t, c.Messages(), 1)
	assert.Equal(t, "from carol", c.Messages()[0].Content)

	require.NoError(t, c.SetActiveChat(ctx, ""))
	assert.Empty(t, c.Messages())
	assert.Empty(t, c.ActiveChat())
}

func TestConversation_CloseIsIdempotent(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	identity := loginAs(t, st, "alice")
	bob := otherUser(t, st, "bob")

	c := NewConversationService(identity, st, testLogger(), time.Minute)
	require.NoError(t, c.SetActiveChat(ctx, bob.ID))

	c.Close()
	c.Close()
}

func TestConversation_MarkAsReadUpdatesLocal(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	identity := loginAs(t, st, "alice")
	alice := identity.CurrentUser()
	bob := otherUser(t, st, "bob")

	c := NewConversationService(identity, st, testLogger(), time.Minute)
	t.Cleanup(c.Close)
	require.NoError(t, c.SetActiveChat(ctx, bob.ID))

	m, err := c.Send(ctx, bob.ID, "to bob")
	require.NoError(t, err)
	require.False(t, c.Messages()[0].Read)

	require.NoError(t, c.MarkAsRead(ctx, m.ID))
	assert.True(t, c.Messages()[0].Read, "local flag flipped without refetch")

	stored, err := st.Messages.GetBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, stored[0].Read)
}

func TestConversation_Conversations(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	identity := loginAs(t, st, "alice")
	alice := identity.CurrentUser()
	bob := otherUser(t, st, "bob")
	carol := otherUser(t, st, "carol")

	_, err := st.Messages.Send(ctx, bob.ID, alice.ID, "one")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond) // distinct millisecond timestamps
	_, err = st.Messages.Send(ctx, bob.ID, alice.ID, "two")
	require.NoError(t, err)
	_, err = st.Messages.Send(ctx, alice.ID, carol.ID, "hi carol")
	require.NoError(t, err)

	c := NewConversationService(identity, st, testLogger(), time.Minute)
	t.Cleanup(c.Close)

	convs, err := c.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	byUser := map[string]models.Conversation{}
	for _, cv := range convs {
		byUser[cv.UserID] = cv
	}
	assert.Equal(t, "two", byUser[bob.ID].LastMessage.Content)
	assert.Equal(t, 2, byUser[bob.ID].Unread)
	assert.Equal(t, 0, byUser[carol.ID].Unread, "own outbound messages are not unread")
}
