package pugdomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueueProgressNotification(t *testing.T) {
	ps := players(2)
	got := QueueProgressNotification(ps, 12)
	want := Notification{
		Kind:        KindQueueProgress,
		Title:       "Members in queue:",
		Description: []string{"Player 1", "Player 2"},
		Footer:      "2 of 12 users in queue",
		Color:       0xA5FFF1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("notification mismatch (-want +got):\n%s", diff)
	}
}

func TestCaptainUpdateNotification(t *testing.T) {
	ps := players(2)
	if got := CaptainUpdateNotification(ps[:1], 2).Footer; got != "1 of 2 captains selected" {
		t.Fatalf("footer = %q", got)
	}
	if got := CaptainUpdateNotification(ps, 2).Footer; got != "Captains are set! Player 1 picks first." {
		t.Fatalf("footer = %q", got)
	}
}

func TestDraftUpdateNotification(t *testing.T) {
	ps := players(4)
	teams := []Team{
		{Captain: ps[0], Players: []Player{ps[0], ps[2]}},
		{Captain: ps[1], Players: []Player{ps[1]}},
	}
	got := DraftUpdateNotification([]NumberedPlayer{{Number: 4, Player: ps[3]}}, teams, ps[1])

	if diff := cmp.Diff([]string{"4. Player 4"}, got.Description); diff != "" {
		t.Fatalf("description mismatch (-want +got):\n%s", diff)
	}
	wantFields := []NotificationField{
		{Name: "Team Player 1", Value: "Player 1\nPlayer 3", Inline: true},
		{Name: "Team Player 2", Value: "Player 2", Inline: true},
	}
	if diff := cmp.Diff(wantFields, got.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if got.Footer != "Player 2 is up to pick" {
		t.Fatalf("footer = %q", got.Footer)
	}
}
