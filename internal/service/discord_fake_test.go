package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/discord"
)

// fakeDiscord is an in-process stand-in for the Discord REST API. It records
// every mutating call and serves canned channels, members, and roles.
type fakeDiscord struct {
	t   *testing.T
	srv *httptest.Server

	mu              sync.Mutex
	channels        map[string]*discord.Channel
	members         map[string]*discord.Member
	roles           []discord.Role
	messages        map[string][]discord.Message
	createdChannels []discord.CreateChannelParams
	modifications   []modifyCall
	permissionEdits []permissionEdit
	sentMessages    []sentMessage
	deletedChannels []string
	nextChannelID   int
}

type modifyCall struct {
	ChannelID string
	Name      *string
	Overwrite *[]discord.PermissionOverwrite
}

type permissionEdit struct {
	ChannelID   string
	OverwriteID string
	Type        int
	Allow       string
	Deny        string
}

type sentMessage struct {
	ChannelID string
	Params    discord.MessageParams
}

func newFakeDiscord(t *testing.T) *fakeDiscord {
	t.Helper()
	f := &fakeDiscord{
		t:             t,
		channels:      make(map[string]*discord.Channel),
		members:       make(map[string]*discord.Member),
		messages:      make(map[string][]discord.Message),
		nextChannelID: 900000000000000000,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /guilds/{guildID}/channels", f.createChannel)
	mux.HandleFunc("GET /guilds/{guildID}/roles", f.getRoles)
	mux.HandleFunc("GET /guilds/{guildID}/members/{userID}", f.getMember)
	mux.HandleFunc("GET /channels/{channelID}", f.getChannel)
	mux.HandleFunc("PATCH /channels/{channelID}", f.modifyChannel)
	mux.HandleFunc("DELETE /channels/{channelID}", f.deleteChannel)
	mux.HandleFunc("PUT /channels/{channelID}/permissions/{overwriteID}", f.editPermission)
	mux.HandleFunc("GET /channels/{channelID}/messages", f.getMessages)
	mux.HandleFunc("POST /channels/{channelID}/messages", f.createMessage)
	mux.HandleFunc("GET /gateway", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"url": "wss://gateway.discord.gg"})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// client returns a discord.Client pointed at the fake server.
func (f *fakeDiscord) client(appID string) *discord.Client {
	c := discord.NewClient("test-token", appID, zap.NewNop())
	c.BaseURL = f.srv.URL
	return c
}

func (f *fakeDiscord) addChannel(ch *discord.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[ch.ID] = ch
}

func (f *fakeDiscord) addMember(id string, m *discord.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[id] = m
}

func (f *fakeDiscord) setRoles(roles []discord.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles = roles
}

func (f *fakeDiscord) setMessages(channelID string, msgs []discord.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[channelID] = msgs
}

func (f *fakeDiscord) createChannel(w http.ResponseWriter, r *http.Request) {
	var params discord.CreateChannelParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.createdChannels = append(f.createdChannels, params)
	f.nextChannelID++
	ch := &discord.Channel{
		ID:                   strconv.Itoa(f.nextChannelID),
		Type:                 params.Type,
		GuildID:              r.PathValue("guildID"),
		Name:                 params.Name,
		Topic:                params.Topic,
		ParentID:             params.ParentID,
		PermissionOverwrites: params.PermissionOverwrites,
	}
	f.channels[ch.ID] = ch
	f.mu.Unlock()
	writeJSON(w, ch)
}

func (f *fakeDiscord) getChannel(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	ch, ok := f.channels[r.PathValue("channelID")]
	f.mu.Unlock()
	if !ok {
		http.Error(w, `{"message":"Unknown Channel"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, ch)
}

func (f *fakeDiscord) modifyChannel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("channelID")
	var params struct {
		Name                 *string                        `json:"name"`
		PermissionOverwrites *[]discord.PermissionOverwrite `json:"permission_overwrites"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.modifications = append(f.modifications, modifyCall{ChannelID: id, Name: params.Name, Overwrite: params.PermissionOverwrites})
	ch, ok := f.channels[id]
	if ok {
		if params.Name != nil {
			ch.Name = *params.Name
		}
		if params.PermissionOverwrites != nil {
			ch.PermissionOverwrites = *params.PermissionOverwrites
		}
	}
	f.mu.Unlock()
	if !ok {
		http.Error(w, `{"message":"Unknown Channel"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, ch)
}

func (f *fakeDiscord) deleteChannel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("channelID")
	f.mu.Lock()
	f.deletedChannels = append(f.deletedChannels, id)
	delete(f.channels, id)
	f.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (f *fakeDiscord) editPermission(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type  int    `json:"type"`
		Allow string `json:"allow"`
		Deny  string `json:"deny"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.permissionEdits = append(f.permissionEdits, permissionEdit{
		ChannelID:   r.PathValue("channelID"),
		OverwriteID: r.PathValue("overwriteID"),
		Type:        body.Type,
		Allow:       body.Allow,
		Deny:        body.Deny,
	})
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeDiscord) createMessage(w http.ResponseWriter, r *http.Request) {
	var params discord.MessageParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.sentMessages = append(f.sentMessages, sentMessage{ChannelID: r.PathValue("channelID"), Params: params})
	f.mu.Unlock()
	writeJSON(w, discord.Message{ID: "msg", ChannelID: r.PathValue("channelID"), Content: params.Content})
}

func (f *fakeDiscord) getMessages(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	msgs := f.messages[r.PathValue("channelID")]
	f.mu.Unlock()
	writeJSON(w, msgs)
}

func (f *fakeDiscord) getMember(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	member, ok := f.members[r.PathValue("userID")]
	f.mu.Unlock()
	if !ok {
		http.Error(w, `{"message":"Unknown Member"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, member)
}

func (f *fakeDiscord) getRoles(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	roles := f.roles
	f.mu.Unlock()
	writeJSON(w, roles)
}

func (f *fakeDiscord) sentTo(channelID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sentMessages {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

