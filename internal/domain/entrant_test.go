package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubEntrant(t *testing.T) {
	root := NewEntrant(1, Profile{Name: "Parent"})
	child, err := NewSubEntrant(2, Profile{Name: "Child"}, root)
	require.NoError(t, err)
	assert.Equal(t, 1, child.ParentID)
	assert.True(t, child.IsSubEntrant())

	_, err = NewSubEntrant(3, Profile{Name: "Grandchild"}, child)
	assert.ErrorIs(t, err, ErrInvalidParent)

	_, err = NewSubEntrant(3, Profile{}, nil)
	assert.ErrorIs(t, err, ErrEntrantNotFound)
}

func TestEntrant_AddSubEntrant(t *testing.T) {
	root := NewEntrant(1, Profile{})
	child, err := NewSubEntrant(2, Profile{}, root)
	require.NoError(t, err)

	require.NoError(t, root.AddSubEntrant(child))
	assert.ErrorIs(t, root.AddSubEntrant(child), ErrDuplicateEntry)
	assert.Equal(t, []int{2}, root.SubEntrantIDs)

	assert.ErrorIs(t, child.AddSubEntrant(NewEntrant(3, Profile{})), ErrInvalidParent)
	assert.ErrorIs(t, root.AddSubEntrant(NewEntrant(4, Profile{})), ErrInvalidInput)

	assert.True(t, root.RemoveSubEntrant(2))
	assert.False(t, root.RemoveSubEntrant(2))
	assert.Empty(t, root.SubEntrantIDs)
}

func TestEntrant_Validate(t *testing.T) {
	e := NewEntrant(5, Profile{})
	require.NoError(t, e.Validate())

	e.ParentID = 1
	e.SubEntrantIDs = []int{6}
	assert.ErrorIs(t, e.Validate(), ErrInvalidParent)

	e.SubEntrantIDs = nil
	e.ParentID = 5
	assert.ErrorIs(t, e.Validate(), ErrInvalidParent)
}

func TestNotification_Responses(t *testing.T) {
	now := time.Now()
	inv := NewNotification("n1", NotificationTypeInvitation, "t", "b", 1, 2, 3, now)
	require.NoError(t, inv.Accept())
	assert.True(t, inv.Accepted)
	require.NoError(t, inv.Decline())
	assert.False(t, inv.Accepted)
	assert.True(t, inv.Declined)
	assert.ErrorIs(t, inv.Stay(), ErrWrongNotificationType)

	ns := NewNotification("n2", NotificationTypeNotSelected, "t", "b", 1, 2, 3, now)
	assert.False(t, ns.Stayed)
	assert.False(t, ns.Declined)
	require.NoError(t, ns.Stay())
	assert.True(t, ns.Stayed)
	require.NoError(t, ns.Decline())
	assert.False(t, ns.Stayed)
	assert.True(t, ns.Declined)
	assert.ErrorIs(t, ns.Accept(), ErrWrongNotificationType)

	plain := NewNotification("n3", NotificationTypeNotification, "t", "b", 1, 2, 3, now)
	assert.ErrorIs(t, plain.Decline(), ErrWrongNotificationType)
	plain.MarkRead()
	assert.True(t, plain.Read)
}

func TestNewNotificationLog(t *testing.T) {
	n := NewNotification("n1", NotificationTypeInvitation, "You won", "Welcome", 4, 5, 6, time.Now())
	l := NewNotificationLog("log-1", n)
	assert.Equal(t, LogInvitationSent, l.Type)
	assert.Equal(t, "n1", l.NotificationID)
	assert.Equal(t, 4, l.RecipientID)
	assert.Equal(t, 5, l.SenderID)
	assert.Equal(t, 6, l.EventID)
	assert.False(t, l.Read)
	l.MarkAsRead()
	assert.True(t, l.Read)

	n.Type = NotificationTypeNotSelected
	assert.Equal(t, LogNotification, NewNotificationLog("log-2", n).Type)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Paginate(items, PaginationParams{Page: 2, PageSize: 2}))
	assert.Equal(t, []int{5}, Paginate(items, PaginationParams{Page: 3, PageSize: 2}))
	assert.Empty(t, Paginate(items, PaginationParams{Page: 4, PageSize: 2}))
	assert.Equal(t, items, Paginate(items, PaginationParams{}))
}
