package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/config"
	"github.com/lizardlabs/ticketbot/internal/discord"
	"github.com/lizardlabs/ticketbot/internal/domain"
	"github.com/lizardlabs/ticketbot/internal/events"
	"github.com/lizardlabs/ticketbot/internal/github"
)

type issueCapture struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

func newConvertFixture(t *testing.T, f *fakeDiscord, ghCfg config.GitHubConfig) (*ConvertService, *issueCapture) {
	t.Helper()

	captured := &issueCapture{}
	ghSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(captured)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(github.Issue{Number: 7, HTMLURL: "https://github.com/owner/repo/issues/7"})
	}))
	t.Cleanup(ghSrv.Close)

	gh := github.NewClient(ghCfg, zap.NewNop())
	gh.BaseURL = ghSrv.URL

	cfg := testDiscordConfig()
	dc := f.client(cfg.AppID)
	svc := NewConvertService(ConvertDependencies{
		Discord:   dc,
		Directory: NewGuildDirectory(dc, nil, cfg.GuildID, zap.NewNop()),
		GitHub:    gh,
		Config:    cfg,
		Logger:    zap.NewNop(),
	})
	return svc, captured
}

func TestConvertTicketChannel(t *testing.T) {
	t.Parallel()

	staffID := "200000000000000009"
	f := newFakeDiscord(t)
	f.addChannel(&discord.Channel{
		ID:       "600000000000000001",
		Name:     "ticket-bugs-alice-0042",
		Topic:    domain.Topic("alice", testCreatorID, domain.CategoryBugs),
		ParentID: "700000000000000001",
	})
	f.addChannel(&discord.Channel{ID: "700000000000000001", Name: "Bug Tickets", Type: discord.ChannelTypeGuildCategory})
	f.addMember(testCreatorID, &discord.Member{User: &discord.User{ID: testCreatorID, Username: "alice"}, Nick: "Alice"})
	f.addMember(staffID, &discord.Member{
		User:  &discord.User{ID: staffID, Username: "staffer"},
		Roles: []string{testStaffRole},
	})
	// API returns newest first; the transcript must come out chronological.
	f.setMessages("600000000000000001", []discord.Message{
		{
			ID: "m2", Author: discord.User{ID: staffID, Username: "staffer"},
			Content: "Looking into it", Timestamp: time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC),
		},
		{
			ID: "m1", Author: discord.User{ID: testCreatorID, Username: "alice"},
			Content:   "It crashes",
			Timestamp: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			Attachments: []discord.Attachment{
				{ID: "a1", Filename: "trace.log", URL: "https://cdn.example/trace.log"},
			},
		},
		{
			ID: "m0", Author: discord.User{ID: "bot", Username: "ticketbot", Bot: true},
			Content: "Welcome", Timestamp: time.Date(2026, 8, 1, 9, 59, 0, 0, time.UTC),
		},
	})

	svc, captured := newConvertFixture(t, f, config.GitHubConfig{
		Token: "tok", Repo: "owner/repo", Labels: []string{"discord-ticket"},
	})

	issue, err := svc.Convert(context.Background(), testActor(), "600000000000000001", "Crash on login", "extra detail")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if issue.Number != 7 {
		t.Errorf("issue number = %d", issue.Number)
	}

	if captured.Title != "Crash on login" {
		t.Errorf("issue title = %q", captured.Title)
	}
	body := captured.Body
	for _, want := range []string{
		"## Additional Description\nextra detail",
		"## Discord Ticket Information",
		"- **Channel:** ticket-bugs-alice-0042",
		"- **Category:** Bug Tickets",
		"## Ticket Participants",
		"**Ticket Creator:**\n- Alice (@alice)",
		"**Staff Members:**\n- staffer (@staffer)",
		"## Ticket Transcript",
		"# Discord Ticket Transcript",
		"📎 [trace.log](https://cdn.example/trace.log)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("issue body missing %q", want)
		}
	}
	// Chronological order: alice's message precedes the staff reply.
	if strings.Index(body, "It crashes") > strings.Index(body, "Looking into it") {
		t.Error("transcript not in chronological order")
	}
	// The bot's own message never names a participant.
	if strings.Contains(body, "ticketbot (@ticketbot)") {
		t.Error("bot listed as participant")
	}

	// Announcement embed posted back into the ticket channel.
	sent := f.sentTo("600000000000000001")
	if len(sent) != 1 || len(sent[0].Params.Embeds) != 1 {
		t.Fatal("conversion announcement missing")
	}
	embed := sent[0].Params.Embeds[0]
	if embed.Color != 0x2ea043 {
		t.Errorf("announcement color = %#x", embed.Color)
	}
}

func TestConvertNonTicketChannel(t *testing.T) {
	t.Parallel()

	f := newFakeDiscord(t)
	f.addChannel(&discord.Channel{ID: "c1", Name: "general"})

	svc, captured := newConvertFixture(t, f, config.GitHubConfig{Token: "tok", Repo: "owner/repo"})

	issue, err := svc.Convert(context.Background(), testActor(), "c1", "Title", "")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if issue == nil {
		t.Fatal("expected issue")
	}
	if strings.Contains(captured.Body, "## Ticket Transcript") {
		t.Error("non-ticket conversion must not include a transcript")
	}
	if !strings.Contains(captured.Body, "no ticket transcript available") {
		t.Errorf("minimal body = %q", captured.Body)
	}
}

func TestConvertDisabled(t *testing.T) {
	t.Parallel()

	f := newFakeDiscord(t)
	svc, _ := newConvertFixture(t, f, config.GitHubConfig{})

	if svc.Enabled() {
		t.Error("Enabled must be false without a token")
	}
	if _, err := svc.Convert(context.Background(), testActor(), "c1", "t", ""); err == nil {
		t.Fatal("expected config error when disabled")
	}
}

func TestConvertEmitsEvent(t *testing.T) {
	t.Parallel()

	f := newFakeDiscord(t)
	f.addChannel(&discord.Channel{ID: "c1", Name: "general"})

	svc, _ := newConvertFixture(t, f, config.GitHubConfig{Token: "tok", Repo: "owner/repo"})
	dispatcher := events.NewInMemoryDispatcher()
	var got []events.Event
	dispatcher.Subscribe(events.EventTicketConverted, func(ctx context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})
	svc.dispatcher = dispatcher

	if _, err := svc.Convert(context.Background(), testActor(), "c1", "t", ""); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 converted event, got %d", len(got))
	}
	payload := got[0].Payload.(events.TicketConvertedPayload)
	if payload.IssueNumber != 7 {
		t.Errorf("payload = %+v", payload)
	}
}
