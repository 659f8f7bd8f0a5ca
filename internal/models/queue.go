package models

import "time"

// QueueEntry 매칭 대기열 항목 (사용자당 최대 하나, user_id 기준 upsert)
type QueueEntry struct {
	UserID     string    `db:"user_id" json:"userId"`
	TopicID    string    `db:"topic_id" json:"topicId"`
	EnqueuedAt time.Time `db:"enqueued_at" json:"enqueuedAt"`
}
