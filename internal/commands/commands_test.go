package commands

import (
	"testing"

	"github.com/lizardlabs/ticketbot/internal/discord"
)

func TestTicketModalIDRoundTrip(t *testing.T) {
	t.Parallel()

	id := TicketModalID("Bugs")
	category, ok := ParseTicketModalID(id)
	if !ok || category != "Bugs" {
		t.Errorf("round trip = (%q, %v)", category, ok)
	}

	if _, ok := ParseTicketModalID("close_ticket"); ok {
		t.Error("unrelated custom id parsed as modal id")
	}
}

func TestAllCommands(t *testing.T) {
	t.Parallel()

	defs := All()
	if len(defs) != 5 {
		t.Fatalf("expected 5 commands, got %d", len(defs))
	}

	byName := map[string]discord.ApplicationCommand{}
	for _, cmd := range defs {
		if cmd.Description == "" {
			t.Errorf("command %q has no description", cmd.Name)
		}
		byName[cmd.Name] = cmd
	}

	if byName[SetupTicketPanel].DefaultMemberPermissions != "8" {
		t.Error("setup command must require administrator")
	}
	for _, name := range []string{DeleteTicket, ConvertToGithub, TicketPublish, TicketSummon} {
		if byName[name].DefaultMemberPermissions != "16" {
			t.Errorf("command %q must require manage channels", name)
		}
	}

	convert := byName[ConvertToGithub]
	if len(convert.Options) != 2 || !convert.Options[0].Required || convert.Options[0].MaxLength != 100 {
		t.Errorf("convert options = %+v", convert.Options)
	}
	summon := byName[TicketSummon]
	if len(summon.Options) != 1 || summon.Options[0].Type != discord.CommandOptionUser {
		t.Errorf("summon options = %+v", summon.Options)
	}
	publish := byName[TicketPublish]
	if len(publish.Options) != 1 || !publish.Options[0].Required {
		t.Errorf("publish options = %+v", publish.Options)
	}
}
