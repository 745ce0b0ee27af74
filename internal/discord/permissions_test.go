package discord

import "testing"

func TestParseFormatPermissions(t *testing.T) {
	t.Parallel()

	bits := PermViewChannel | PermSendMessages
	if got := ParsePermissions(FormatPermissions(bits)); got != bits {
		t.Errorf("round trip = %d, want %d", got, bits)
	}
	if ParsePermissions("not-a-number") != 0 {
		t.Error("unparseable input must yield zero permissions")
	}
	if ParsePermissions("") != 0 {
		t.Error("empty input must yield zero permissions")
	}
}

func TestOverwriteBuilders(t *testing.T) {
	t.Parallel()

	ro := RoleOverwrite("role1", PermViewChannel, PermSendMessages)
	if ro.Type != OverwriteRole || ro.ID != "role1" {
		t.Errorf("unexpected role overwrite: %+v", ro)
	}
	if ro.Allow != "1024" || ro.Deny != "2048" {
		t.Errorf("bitfields not encoded as decimal strings: %+v", ro)
	}

	mo := MemberOverwrite("user1", PermViewChannel, 0)
	if mo.Type != OverwriteMember {
		t.Errorf("unexpected member overwrite type: %d", mo.Type)
	}
	if !mo.AllowsView() {
		t.Error("AllowsView should report true")
	}
	if RoleOverwrite("r", PermSendMessages, 0).AllowsView() {
		t.Error("AllowsView should report false without the view bit")
	}
}

func TestBasePermissions(t *testing.T) {
	t.Parallel()

	guildID := "guild"
	roles := []Role{
		{ID: guildID, Permissions: FormatPermissions(PermViewChannel)},
		{ID: "staff", Permissions: FormatPermissions(PermManageMessages)},
		{ID: "other", Permissions: FormatPermissions(PermAdministrator)},
	}
	member := &Member{User: &User{ID: "u1"}, Roles: []string{"staff"}}

	got := BasePermissions(guildID, roles, member)
	want := PermViewChannel | PermManageMessages
	if got != want {
		t.Errorf("BasePermissions = %d, want %d", got, want)
	}
}

func TestComputeChannelPermissionsAdminShortCircuit(t *testing.T) {
	t.Parallel()

	guildID := "guild"
	roles := []Role{{ID: "admins", Permissions: FormatPermissions(PermAdministrator)}}
	member := &Member{User: &User{ID: "u1"}, Roles: []string{"admins"}}
	channel := &Channel{PermissionOverwrites: []PermissionOverwrite{
		RoleOverwrite(guildID, 0, PermViewChannel),
	}}

	got := ComputeChannelPermissions(guildID, roles, member, channel)
	if got&PermViewChannel == 0 {
		t.Error("administrator must bypass channel denies")
	}
}

func TestComputeChannelPermissionsLayering(t *testing.T) {
	t.Parallel()

	guildID := "guild"
	roles := []Role{
		{ID: guildID, Permissions: FormatPermissions(PermViewChannel | PermSendMessages)},
		{ID: "staff", Permissions: "0"},
	}
	member := &Member{User: &User{ID: "u1"}, Roles: []string{"staff"}}

	// Everyone denied view; the member's role overwrite re-allows it.
	channel := &Channel{PermissionOverwrites: []PermissionOverwrite{
		RoleOverwrite(guildID, 0, PermViewChannel),
		RoleOverwrite("staff", PermViewChannel, 0),
	}}
	got := ComputeChannelPermissions(guildID, roles, member, channel)
	if got&PermViewChannel == 0 {
		t.Error("role overwrite allow must win over everyone deny")
	}

	// A member-level deny wins over every role-level allow.
	channel.PermissionOverwrites = append(channel.PermissionOverwrites,
		MemberOverwrite("u1", 0, PermViewChannel))
	got = ComputeChannelPermissions(guildID, roles, member, channel)
	if got&PermViewChannel != 0 {
		t.Error("member overwrite deny must win over role allows")
	}
}

func TestComputeChannelPermissionsHiddenTicket(t *testing.T) {
	t.Parallel()

	guildID := "guild"
	roles := []Role{{ID: guildID, Permissions: FormatPermissions(PermViewChannel | PermSendMessages)}}
	outsider := &Member{User: &User{ID: "outsider"}, Roles: nil}
	creator := &Member{User: &User{ID: "creator"}, Roles: nil}

	perms := PermViewChannel | PermSendMessages | PermReadMessageHistory
	channel := &Channel{PermissionOverwrites: []PermissionOverwrite{
		RoleOverwrite(guildID, 0, PermViewChannel),
		MemberOverwrite("creator", perms, 0),
	}}

	if got := ComputeChannelPermissions(guildID, roles, outsider, channel); got&PermViewChannel != 0 {
		t.Error("outsider must not see the ticket channel")
	}
	if got := ComputeChannelPermissions(guildID, roles, creator, channel); got&PermViewChannel == 0 {
		t.Error("creator must see the ticket channel")
	}
}
