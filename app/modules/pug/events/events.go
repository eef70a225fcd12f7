// Package pugevents defines the topics and payloads exchanged with the chat
// frontend.
package pugevents

import (
	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	"github.com/google/uuid"
)

// Inbound command topics.
const (
	JoinRequestedV1    = "pug.join.requested.v1"
	LeaveRequestedV1   = "pug.leave.requested.v1"
	CaptainRequestedV1 = "pug.captain.requested.v1"
	PickRequestedV1    = "pug.pick.requested.v1"
	ResetRequestedV1   = "pug.reset.requested.v1"
	StatusRequestedV1  = "pug.status.requested.v1"
)

// Outbound topics.
const (
	NotificationV1    = "pug.notification.v1"
	CommandRejectedV1 = "pug.command.rejected.v1"
	MatchCompletedV1  = "pug.match.completed.v1"
	StatusV1          = "pug.status.v1"
)

// StatusReplyPrefix is the only subject prefix accepted as a status reply_to.
const StatusReplyPrefix = "pug.status.reply."

// StreamName is the JetStream stream holding every pug subject.
const StreamName = "pug"

// StreamSubjects are the subjects bound to StreamName.
var StreamSubjects = []string{"pug.>"}

// PlayerCommandPayloadV1 is the payload of join, leave and captain requests.
type PlayerCommandPayloadV1 struct {
	Player    pugdomain.Player `json:"player"`
	ChannelID string           `json:"channel_id,omitempty"`
}

// PickRequestedPayloadV1 asks to draft player number PickNumber onto Captain's team.
type PickRequestedPayloadV1 struct {
	Captain    pugdomain.Player `json:"captain"`
	PickNumber int              `json:"pick_number"`
	ChannelID  string           `json:"channel_id,omitempty"`
}

// AdminCommandPayloadV1 is the payload of reset and status requests.
type AdminCommandPayloadV1 struct {
	RequestedBy pugdomain.Player `json:"requested_by"`
	ChannelID   string           `json:"channel_id,omitempty"`
}

// NotificationPayloadV1 is a message for the chat frontend to render.
type NotificationPayloadV1 struct {
	GameID       uuid.UUID              `json:"game_id"`
	Phase        pugdomain.Phase        `json:"phase"`
	ChannelID    string                 `json:"channel_id,omitempty"`
	Notification pugdomain.Notification `json:"notification"`
}

// CommandRejectedPayloadV1 explains why a command was refused.
type CommandRejectedPayloadV1 struct {
	Command    string             `json:"command"`
	Reason     string             `json:"reason"`
	Message    string             `json:"message"`
	Phase      pugdomain.Phase    `json:"phase"`
	PlayerID   pugdomain.PlayerID `json:"player_id"`
	PickNumber int                `json:"pick_number,omitempty"`
	ChannelID  string             `json:"channel_id,omitempty"`
}

// MatchCompletedPayloadV1 carries the final rosters of a draft.
type MatchCompletedPayloadV1 struct {
	GameID    uuid.UUID        `json:"game_id"`
	Teams     []pugdomain.Team `json:"teams"`
	ChannelID string           `json:"channel_id,omitempty"`
}

// StatusPayloadV1 answers a status request.
type StatusPayloadV1 struct {
	Snapshot  pugdomain.Snapshot `json:"snapshot"`
	ChannelID string             `json:"channel_id,omitempty"`
}
