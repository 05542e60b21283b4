package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository/memory"
)

type transferFixture struct {
	svc     *TransferService
	users   *memory.UserStore
	tickets *memory.TicketStore
	history *memory.HistoryStore
}

func newTransferFixture() *transferFixture {
	users := memory.NewUserStore()
	tickets := memory.NewTicketStore()
	history := memory.NewHistoryStore()
	svc := NewTransferService(TransferDependencies{
		TicketRepo:  tickets,
		UserRepo:    users,
		HistoryRepo: history,
	})
	return &transferFixture{svc: svc, users: users, tickets: tickets, history: history}
}

func TestRequestTransfer(t *testing.T) {
	t.Run("owner requests transfer on in_progress ticket", func(t *testing.T) {
		f := newTransferFixture()
		owner := seedUser(t, f.users, domain.RoleUser, nil)
		target := &domain.User{Name: "target", Email: "target@example.com", PasswordHash: "x", Role: domain.RoleUser}
		require.NoError(t, f.users.Create(context.Background(), target))
		ticket := seedTicket(t, f.tickets, owner, domain.TicketStatusInProgress)

		updated, err := f.svc.RequestTransfer(context.Background(), owner, ticket.ID, target.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.TransferStatus)
		assert.Equal(t, domain.TransferStatusPending, *updated.TransferStatus)
		require.NotNil(t, updated.TransferToID)
		assert.Equal(t, target.ID, *updated.TransferToID)
		// ownership does not move until approval
		assert.Equal(t, owner.ID, updated.AssignedToID)

		rows, err := f.history.ListByTicket(context.Background(), ticket.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "transfer requested, pending approval", rows[0].Action)
	})

	t.Run("only the assignee may request", func(t *testing.T) {
		f := newTransferFixture()
		owner := seedUser(t, f.users, domain.RoleUser, nil)
		stranger := &domain.User{Name: "stranger", Email: "stranger@example.com", PasswordHash: "x", Role: domain.RoleUser}
		require.NoError(t, f.users.Create(context.Background(), stranger))
		ticket := seedTicket(t, f.tickets, owner, domain.TicketStatusInProgress)

		_, err := f.svc.RequestTransfer(context.Background(), stranger, ticket.ID, owner.ID)
		assertDomainErr(t, err, "FORBIDDEN")
	})

	t.Run("manager assignee may not request", func(t *testing.T) {
		f := newTransferFixture()
		manager := seedUser(t, f.users, domain.RoleManager, nil)
		ticket := seedTicket(t, f.tickets, manager, domain.TicketStatusInProgress)

		_, err := f.svc.RequestTransfer(context.Background(), manager, ticket.ID, "whoever")
		assertDomainErr(t, err, "FORBIDDEN")
	})

	t.Run("closed ticket cannot be transferred", func(t *testing.T) {
		f := newTransferFixture()
		owner := seedUser(t, f.users, domain.RoleUser, nil)
		ticket := seedTicket(t, f.tickets, owner, domain.TicketStatusClosed)

		_, err := f.svc.RequestTransfer(context.Background(), owner, ticket.ID, "whoever")
		assertDomainErr(t, err, "INVALID_STATE")
	})

	t.Run("open ticket cannot be transferred", func(t *testing.T) {
		f := newTransferFixture()
		owner := seedUser(t, f.users, domain.RoleUser, nil)
		ticket := seedTicket(t, f.tickets, owner, domain.TicketStatusOpen)

		_, err := f.svc.RequestTransfer(context.Background(), owner, ticket.ID, "whoever")
		assertDomainErr(t, err, "INVALID_STATE")
	})

	t.Run("pending request blocks a second one", func(t *testing.T) {
		f := newTransferFixture()
		owner := seedUser(t, f.users, domain.RoleUser, nil)
		target := &domain.User{Name: "target", Email: "target@example.com", PasswordHash: "x", Role: domain.RoleUser}
		require.NoError(t, f.users.Create(context.Background(), target))
		ticket := seedTicket(t, f.tickets, owner, domain.TicketStatusInProgress)

		_, err := f.svc.RequestTransfer(context.Background(), owner, ticket.ID, target.ID)
		require.NoError(t, err)
		_, err = f.svc.RequestTransfer(context.Background(), owner, ticket.ID, target.ID)
		assertDomainErr(t, err, "INVALID_STATE")
	})

	t.Run("unknown target user", func(t *testing.T) {
		f := newTransferFixture()
		owner := seedUser(t, f.users, domain.RoleUser, nil)
		ticket := seedTicket(t, f.tickets, owner, domain.TicketStatusInProgress)

		_, err := f.svc.RequestTransfer(context.Background(), owner, ticket.ID, "missing")
		assertDomainErr(t, err, "NOT_FOUND")
	})
}

func TestResolveTransfer(t *testing.T) {
	setup := func(t *testing.T) (*transferFixture, *domain.User, *domain.User, *domain.User, *domain.Ticket) {
		t.Helper()
		f := newTransferFixture()
		owner := seedUser(t, f.users, domain.RoleUser, nil)
		target := &domain.User{Name: "target", Email: "target@example.com", PasswordHash: "x", Role: domain.RoleUser}
		require.NoError(t, f.users.Create(context.Background(), target))
		manager := seedUser(t, f.users, domain.RoleManager, nil)
		ticket := seedTicket(t, f.tickets, owner, domain.TicketStatusInProgress)

		_, err := f.svc.RequestTransfer(context.Background(), owner, ticket.ID, target.ID)
		require.NoError(t, err)
		return f, owner, target, manager, ticket
	}

	t.Run("approval moves ownership and clears target", func(t *testing.T) {
		f, _, target, manager, ticket := setup(t)

		resolved, err := f.svc.ResolveTransfer(context.Background(), manager, ticket.ID, true)
		require.NoError(t, err)
		assert.Equal(t, target.ID, resolved.AssignedToID)
		assert.Nil(t, resolved.TransferToID)
		require.NotNil(t, resolved.TransferStatus)
		assert.Equal(t, domain.TransferStatusApproved, *resolved.TransferStatus)
		// the ticket itself stays IN_PROGRESS
		assert.Equal(t, domain.TicketStatusInProgress, resolved.Status)
	})

	t.Run("rejection keeps ownership and clears target", func(t *testing.T) {
		f, owner, _, manager, ticket := setup(t)

		resolved, err := f.svc.ResolveTransfer(context.Background(), manager, ticket.ID, false)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, resolved.AssignedToID)
		assert.Nil(t, resolved.TransferToID)
		require.NotNil(t, resolved.TransferStatus)
		assert.Equal(t, domain.TransferStatusRejected, *resolved.TransferStatus)
	})

	t.Run("terminal status allows a fresh request", func(t *testing.T) {
		f, owner, target, manager, ticket := setup(t)

		_, err := f.svc.ResolveTransfer(context.Background(), manager, ticket.ID, false)
		require.NoError(t, err)

		// rejected is terminal, not pending, so the owner may try again
		again, err := f.svc.RequestTransfer(context.Background(), owner, ticket.ID, target.ID)
		require.NoError(t, err)
		require.NotNil(t, again.TransferStatus)
		assert.Equal(t, domain.TransferStatusPending, *again.TransferStatus)
	})

	t.Run("plain user may not resolve", func(t *testing.T) {
		f, owner, _, _, ticket := setup(t)

		_, err := f.svc.ResolveTransfer(context.Background(), owner, ticket.ID, true)
		assertDomainErr(t, err, "FORBIDDEN")
	})

	t.Run("resolving without a pending request fails", func(t *testing.T) {
		f := newTransferFixture()
		owner := seedUser(t, f.users, domain.RoleUser, nil)
		manager := seedUser(t, f.users, domain.RoleManager, nil)
		ticket := seedTicket(t, f.tickets, owner, domain.TicketStatusInProgress)

		_, err := f.svc.ResolveTransfer(context.Background(), manager, ticket.ID, true)
		assertDomainErr(t, err, "INVALID_STATE")

		stored, getErr := f.tickets.GetByID(context.Background(), ticket.ID)
		require.NoError(t, getErr)
		assert.Equal(t, owner.ID, stored.AssignedToID)
		assert.Nil(t, stored.TransferStatus)
	})
}
