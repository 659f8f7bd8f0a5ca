package models

import "time"

// PresenceRecord 매치 참가자별 마지막 하트비트 시각
type PresenceRecord struct {
	RoomToken string    `db:"room_token" json:"roomToken"`
	UserID    string    `db:"user_id" json:"userId"`
	LastSeen  time.Time `db:"last_seen" json:"lastSeen"`
}
