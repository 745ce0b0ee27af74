package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/discord"
)

func TestCreatorFromOverwrites(t *testing.T) {
	t.Parallel()

	creatorID := "200000000000000011"
	staffID := "200000000000000012"
	botUserID := testBotID

	f := newFakeDiscord(t)
	f.addMember(creatorID, &discord.Member{User: &discord.User{ID: creatorID, Username: "alice"}})
	f.addMember(staffID, &discord.Member{
		User:  &discord.User{ID: staffID, Username: "staffer"},
		Roles: []string{testStaffRole},
	})
	f.addMember(botUserID, &discord.Member{User: &discord.User{ID: botUserID, Username: "ticketbot", Bot: true}})

	directory := NewGuildDirectory(f.client(testBotID), nil, testGuildID, zap.NewNop())

	channel := &discord.Channel{
		ID:   "c1",
		Name: "ticket-general-alice-0001",
		PermissionOverwrites: []discord.PermissionOverwrite{
			discord.RoleOverwrite(testGuildID, 0, discord.PermViewChannel),
			discord.MemberOverwrite(botUserID, discord.PermViewChannel, 0),
			discord.MemberOverwrite(staffID, discord.PermViewChannel, 0),
			discord.MemberOverwrite(creatorID, discord.PermViewChannel, 0),
		},
	}

	got := directory.CreatorFromOverwrites(context.Background(), channel, testStaffRole, botUserID)
	if got != creatorID {
		t.Errorf("creator = %q, want %q", got, creatorID)
	}
}

func TestCreatorFromOverwritesNoCandidate(t *testing.T) {
	t.Parallel()

	f := newFakeDiscord(t)
	directory := NewGuildDirectory(f.client(testBotID), nil, testGuildID, zap.NewNop())

	channel := &discord.Channel{
		ID: "c1",
		PermissionOverwrites: []discord.PermissionOverwrite{
			discord.RoleOverwrite(testGuildID, 0, discord.PermViewChannel),
			discord.MemberOverwrite(testBotID, discord.PermViewChannel, 0),
		},
	}
	if got := directory.CreatorFromOverwrites(context.Background(), channel, testStaffRole, testBotID); got != "" {
		t.Errorf("expected empty creator, got %q", got)
	}
}

func TestDirectoryMemberNotFound(t *testing.T) {
	t.Parallel()

	f := newFakeDiscord(t)
	directory := NewGuildDirectory(f.client(testBotID), nil, testGuildID, zap.NewNop())

	_, err := directory.Member(context.Background(), "absent")
	if !discord.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}
