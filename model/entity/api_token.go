package entity

import "time"

// ApiToken authenticates API callers. Permission checks happen upstream;
// the token only supplies the actor identity recorded in the ledger.
type ApiToken struct {
	TokenID   uint      `gorm:"column:token_id;primaryKey;autoIncrement"`
	Token     string    `gorm:"column:token;type:varchar(64);not null;uniqueIndex"`
	ActorRef  string    `gorm:"column:actor_ref;type:varchar(64);not null"`
	Revoked   uint16    `gorm:"column:revoked;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ApiToken) TableName() string {
	return "api_token"
}
