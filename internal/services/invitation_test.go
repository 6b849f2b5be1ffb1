package services

import (
	"context"
	"testing"

	"eventlottery/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawnEvent returns an event with one confirmed winner and one waitlisted loser, plus their notifications.
func drawnEvent(t *testing.T, f *fixture) (ev *domain.Event, invite, notSelected *domain.Notification) {
	t.Helper()
	ctx := context.Background()
	ev = f.event(t, "Camp", 1, 0, day)
	a, b := f.entrant(t, "A"), f.entrant(t, "B")
	require.NoError(t, f.eventSvc.AddToWaitlist(ctx, ev.ID(), a.ID))
	require.NoError(t, f.eventSvc.AddToWaitlist(ctx, ev.ID(), b.ID))
	result, err := f.eventSvc.RunLottery(ctx, ev.ID())
	require.NoError(t, err)
	require.Len(t, result.Winners, 1)
	require.Len(t, result.Losers, 1)

	winnerInbox := f.inbox(t, result.Winners[0])
	require.Len(t, winnerInbox, 1)
	loserInbox := f.inbox(t, result.Losers[0])
	require.Len(t, loserInbox, 1)
	return f.reload(t, ev.ID()), winnerInbox[0], loserInbox[0]
}

func TestInvitationService_Accept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, invite, notSelected := drawnEvent(t, f)

	n, err := f.invitations.AcceptInvitation(ctx, invite.ID)
	require.NoError(t, err)
	assert.True(t, n.Accepted)
	assert.False(t, n.Declined)
	assert.True(t, f.reload(t, ev.ID()).IsConfirmed(invite.RecipientID))

	again, err := f.invitations.AcceptInvitation(ctx, invite.ID)
	require.NoError(t, err)
	assert.True(t, again.Accepted)

	logs, err := f.audit.ListLogsOfType(ctx, domain.LogInvitationAccepted)
	require.NoError(t, err)
	assert.Len(t, logs, 1, "repeat accept is a no-op")

	_, err = f.invitations.AcceptInvitation(ctx, notSelected.ID)
	assert.ErrorIs(t, err, domain.ErrWrongNotificationType)

	_, err = f.invitations.AcceptInvitation(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
}

func TestInvitationService_Decline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, invite, _ := drawnEvent(t, f)

	n, err := f.invitations.DeclineInvitation(ctx, invite.ID)
	require.NoError(t, err)
	assert.True(t, n.Declined)
	assert.False(t, n.Accepted)

	after := f.reload(t, ev.ID())
	assert.False(t, after.IsMember(invite.RecipientID))
	assert.Equal(t, []int{invite.RecipientID}, after.CancelledIDs)
	assert.Equal(t, 0, after.Info.CurrentEntrants)

	inbox := f.inbox(t, invite.RecipientID)
	assert.Equal(t, 1, countOfType(inbox, domain.NotificationTypeNotification), "one cancellation notice")

	_, err = f.invitations.DeclineInvitation(ctx, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countOfType(f.inbox(t, invite.RecipientID), domain.NotificationTypeNotification))

	stored, err := f.notifications.GetNotification(ctx, invite.ID)
	require.NoError(t, err)
	assert.True(t, stored.Declined)
}

func TestInvitationService_NotSelectedResponses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev, invite, notSelected := drawnEvent(t, f)

	n, err := f.invitations.StayOnWaitlist(ctx, notSelected.ID)
	require.NoError(t, err)
	assert.True(t, n.Stayed)
	assert.True(t, f.reload(t, ev.ID()).IsWaitlisted(notSelected.RecipientID))

	n, err = f.invitations.LeaveWaitlist(ctx, notSelected.ID)
	require.NoError(t, err)
	assert.True(t, n.Declined)
	assert.False(t, n.Stayed)
	assert.False(t, f.reload(t, ev.ID()).IsWaitlisted(notSelected.RecipientID))

	_, err = f.invitations.StayOnWaitlist(ctx, invite.ID)
	assert.ErrorIs(t, err, domain.ErrWrongNotificationType)
	_, err = f.invitations.LeaveWaitlist(ctx, invite.ID)
	assert.ErrorIs(t, err, domain.ErrWrongNotificationType)
}

func TestInvitationService_Respond(t *testing.T) {
	tests := []struct {
		name    string
		pick    func(invite, notSelected *domain.Notification) string
		action  domain.ResponseAction
		check   func(t *testing.T, n *domain.Notification)
		wantErr error
	}{
		{
			name:   "accept invitation",
			pick:   func(i, _ *domain.Notification) string { return i.ID },
			action: domain.ResponseAccept,
			check:  func(t *testing.T, n *domain.Notification) { assert.True(t, n.Accepted) },
		},
		{
			name:   "decline invitation",
			pick:   func(i, _ *domain.Notification) string { return i.ID },
			action: domain.ResponseDecline,
			check:  func(t *testing.T, n *domain.Notification) { assert.True(t, n.Declined) },
		},
		{
			name:   "stay on waitlist",
			pick:   func(_, ns *domain.Notification) string { return ns.ID },
			action: domain.ResponseAccept,
			check:  func(t *testing.T, n *domain.Notification) { assert.True(t, n.Stayed) },
		},
		{
			name:   "leave waitlist",
			pick:   func(_, ns *domain.Notification) string { return ns.ID },
			action: domain.ResponseDecline,
			check:  func(t *testing.T, n *domain.Notification) { assert.True(t, n.Declined) },
		},
		{
			name:    "unknown action",
			pick:    func(i, _ *domain.Notification) string { return i.ID },
			action:  "maybe",
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, invite, notSelected := drawnEvent(t, f)
			n, err := f.invitations.Respond(context.Background(), tt.pick(invite, notSelected), tt.action)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, n)
		})
	}
}

func TestInvitationService_RespondToPlainNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.entrant(t, "E")
	require.NoError(t, f.notifications.Send(ctx, domain.NotificationTypeNotification, "Hi", "", e.ID, 0, 0))
	inbox := f.inbox(t, e.ID)
	require.Len(t, inbox, 1)

	_, err := f.invitations.Respond(ctx, inbox[0].ID, domain.ResponseAccept)
	assert.ErrorIs(t, err, domain.ErrWrongNotificationType)
}

func TestInvitationService_RespondWithToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, invite, _ := drawnEvent(t, f)

	token, err := (&fakeTokens{}).Issue(invite.ID, domain.ResponseAccept)
	require.NoError(t, err)
	n, err := f.invitations.RespondWithToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, n.Accepted)

	_, err = f.invitations.RespondWithToken(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
