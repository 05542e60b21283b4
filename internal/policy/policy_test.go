package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestVisibilityFilter(t *testing.T) {
	area := "area-1"
	status := domain.TicketStatusOpen

	tests := []struct {
		name    string
		input   VisibilityInput
		want    repository.TicketFilter
		wantErr bool
	}{
		{
			name:  "user sees only own tickets",
			input: VisibilityInput{Role: domain.RoleUser, UserID: "u1"},
			want:  repository.TicketFilter{AssigneeIDs: []string{"u1"}},
		},
		{
			name: "manager sees subordinates and self",
			input: VisibilityInput{
				Role:           domain.RoleManager,
				UserID:         "m1",
				SubordinateIDs: []string{"u1", "u2"},
			},
			want: repository.TicketFilter{AssigneeIDs: []string{"u1", "u2", "m1"}},
		},
		{
			name:  "manager with no subordinates still sees self",
			input: VisibilityInput{Role: domain.RoleManager, UserID: "m1"},
			want:  repository.TicketFilter{AssigneeIDs: []string{"m1"}},
		},
		{
			name:  "admin scoped to own area",
			input: VisibilityInput{Role: domain.RoleAdmin, UserID: "a1", AreaID: &area},
			want:  repository.TicketFilter{AreaID: &area},
		},
		{
			name:  "admin without area sees nothing",
			input: VisibilityInput{Role: domain.RoleAdmin, UserID: "a1"},
			want:  repository.TicketFilter{MatchNone: true},
		},
		{
			name:  "superadmin sees everything",
			input: VisibilityInput{Role: domain.RoleSuperAdmin, UserID: "s1"},
			want:  repository.TicketFilter{},
		},
		{
			name:  "status narrows the scope",
			input: VisibilityInput{Role: domain.RoleUser, UserID: "u1", Status: &status},
			want:  repository.TicketFilter{AssigneeIDs: []string{"u1"}, Status: &status},
		},
		{
			name:    "unknown role rejected",
			input:   VisibilityInput{Role: domain.Role("INTERN"), UserID: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VisibilityFilter(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanClose(t *testing.T) {
	ticket := &domain.Ticket{AssignedToID: "owner"}

	assert.True(t, CanClose(domain.RoleUser, "owner", ticket))
	assert.False(t, CanClose(domain.RoleUser, "stranger", ticket))
	assert.True(t, CanClose(domain.RoleManager, "stranger", ticket))
	assert.True(t, CanClose(domain.RoleAdmin, "stranger", ticket))
	assert.False(t, CanClose(domain.RoleSuperAdmin, "stranger", ticket))
}

func TestCanComment(t *testing.T) {
	ticket := &domain.Ticket{AssignedToID: "owner"}

	assert.True(t, CanComment("owner", ticket))
	assert.False(t, CanComment("stranger", ticket))
	assert.False(t, CanComment("owner", nil))
}

func TestCanRequestTransfer(t *testing.T) {
	ticket := &domain.Ticket{AssignedToID: "owner"}

	assert.True(t, CanRequestTransfer(domain.RoleUser, "owner", ticket))
	assert.False(t, CanRequestTransfer(domain.RoleUser, "stranger", ticket))
	// managers and admins reassign via approval, not by requesting
	assert.False(t, CanRequestTransfer(domain.RoleManager, "owner", ticket))
	assert.False(t, CanRequestTransfer(domain.RoleAdmin, "owner", ticket))
}

func TestCanResolveTransfer(t *testing.T) {
	assert.False(t, CanResolveTransfer(domain.RoleUser))
	assert.True(t, CanResolveTransfer(domain.RoleManager))
	assert.True(t, CanResolveTransfer(domain.RoleAdmin))
	assert.False(t, CanResolveTransfer(domain.RoleSuperAdmin))
}

func TestCanReopenClosed(t *testing.T) {
	assert.False(t, CanReopenClosed(domain.RoleUser))
	assert.False(t, CanReopenClosed(domain.RoleManager))
	assert.True(t, CanReopenClosed(domain.RoleAdmin))
	assert.False(t, CanReopenClosed(domain.RoleSuperAdmin))
}

func TestCanViewThread(t *testing.T) {
	ticket := &domain.Ticket{AssignedToID: "owner", AreaID: strPtr("area-1")}

	assert.True(t, CanViewThread(domain.RoleUser, "owner", ticket))
	assert.False(t, CanViewThread(domain.RoleUser, "stranger", ticket))
	assert.True(t, CanViewThread(domain.RoleManager, "stranger", ticket))
	assert.True(t, CanViewThread(domain.RoleAdmin, "stranger", ticket))
}
