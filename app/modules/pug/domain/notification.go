package pugdomain

import (
	"fmt"
	"strings"
)

// NotificationKind tells the chat side which template a notification follows.
type NotificationKind string

const (
	KindQueueProgress NotificationKind = "queue_progress"
	KindQueueFull     NotificationKind = "queue_full"
	KindCaptainUpdate NotificationKind = "captain_update"
	KindDraftUpdate   NotificationKind = "draft_update"
	KindDraftComplete NotificationKind = "draft_complete"
)

// QueueColor is the embed color used for every pug notification (rgb 165,255,241).
const QueueColor = 0xA5FFF1

const (
	queueTitle      = "Members in queue:"
	queueFullFooter = "The queue is full! Now picking captains!"
)

// NotificationField is a titled block of text, rendered as an embed field.
type NotificationField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Notification is a platform-neutral description of a chat message.
type Notification struct {
	Kind        NotificationKind    `json:"kind"`
	Title       string              `json:"title"`
	Description []string            `json:"description"`
	Footer      string              `json:"footer"`
	Color       int                 `json:"color"`
	Fields      []NotificationField `json:"fields,omitempty"`
}

// Team is one captain's roster. The captain is always Players[0].
type Team struct {
	Captain Player   `json:"captain"`
	Players []Player `json:"players"`
}

func playerNames(players []Player) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return names
}

// QueueProgressNotification reports the queue while it still has open slots.
func QueueProgressNotification(members []Player, maxMembers int) Notification {
	return Notification{
		Kind:        KindQueueProgress,
		Title:       queueTitle,
		Description: playerNames(members),
		Footer:      fmt.Sprintf("%d of %d users in queue", len(members), maxMembers),
		Color:       QueueColor,
	}
}

// QueueFullNotification announces that the queue filled up.
func QueueFullNotification(members []Player) Notification {
	return Notification{
		Kind:        KindQueueFull,
		Title:       queueTitle,
		Description: playerNames(members),
		Footer:      queueFullFooter,
		Color:       QueueColor,
	}
}

// CaptainUpdateNotification lists the seated captains.
func CaptainUpdateNotification(captains []Player, numCaptains int) Notification {
	footer := fmt.Sprintf("%d of %d captains selected", len(captains), numCaptains)
	if len(captains) == numCaptains && numCaptains > 0 {
		footer = fmt.Sprintf("Captains are set! %s picks first.", captains[0].Name)
	}
	return Notification{
		Kind:        KindCaptainUpdate,
		Title:       "Captains:",
		Description: playerNames(captains),
		Footer:      footer,
		Color:       QueueColor,
	}
}

// DraftUpdateNotification shows the remaining pool, the rosters so far and
// whose pick is next.
func DraftUpdateNotification(available []NumberedPlayer, teams []Team, next Player) Notification {
	lines := make([]string, len(available))
	for i, np := range available {
		lines[i] = fmt.Sprintf("%d. %s", np.Number, np.Player.Name)
	}
	return Notification{
		Kind:        KindDraftUpdate,
		Title:       "Available players:",
		Description: lines,
		Footer:      fmt.Sprintf("%s is up to pick", next.Name),
		Color:       QueueColor,
		Fields:      teamFields(teams),
	}
}

// DraftCompleteNotification shows the final rosters.
func DraftCompleteNotification(teams []Team) Notification {
	return Notification{
		Kind:        KindDraftComplete,
		Title:       "Teams are set!",
		Description: []string{},
		Footer:      "Draft complete. Good luck, have fun!",
		Color:       QueueColor,
		Fields:      teamFields(teams),
	}
}

func teamFields(teams []Team) []NotificationField {
	fields := make([]NotificationField, len(teams))
	for i, t := range teams {
		value := strings.Join(playerNames(t.Players), "\n")
		if value == "" {
			value = "-"
		}
		fields[i] = NotificationField{
			Name:   fmt.Sprintf("Team %s", t.Captain.Name),
			Value:  value,
			Inline: true,
		}
	}
	return fields
}
