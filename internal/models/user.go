package models

import "time"

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Profile 사용자의 레이팅 집계 (Rating Settlement만 수정)
type Profile struct {
	UserID       string    `json:"userId" db:"user_id"`
	SkillRating  int       `json:"skillRating" db:"skill_rating"`
	CollabRating int       `json:"collabRating" db:"collab_rating"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

const (
	DefaultSkillRating  = 1000
	DefaultCollabRating = 1000
)

// RatingDelta 정산 시 프로필에 가산되는 변화량
type RatingDelta struct {
	SR int `json:"sr"`
	CR int `json:"cr"`
}
