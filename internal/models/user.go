package models

// User represents a TaskRoom account.
type User struct {
	ID             string `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Username       string `json:"username" gorm:"type:varchar(30);not null" validate:"required,min=3,max=30"`
	Email          string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	EmailVerified  bool   `json:"email_verified" gorm:"not null;default:false"`
	HashedPassword string `json:"-" gorm:"type:varchar(255);not null" validate:"required"`
	Salt           string `json:"-" gorm:"type:varchar(255)"`
	AvatarURL      string `json:"avatar_url,omitempty" gorm:"type:varchar(2048)" validate:"omitempty,url"`
	OwnedProjects  IDList `json:"owned_projects" validate:"dive,objectid"`
	OwnedTasks     IDList `json:"owned_tasks" validate:"dive,objectid"`
	JoinedProjects IDList `json:"joined_projects" validate:"dive,objectid"`
	JoinedTasks    IDList `json:"joined_tasks" validate:"dive,objectid"`
}

// Clone returns a copy that shares no reference collections with u.
func (u User) Clone() User {
	u.OwnedProjects = CopyIDs(u.OwnedProjects)
	u.OwnedTasks = CopyIDs(u.OwnedTasks)
	u.JoinedProjects = CopyIDs(u.JoinedProjects)
	u.JoinedTasks = CopyIDs(u.JoinedTasks)
	return u
}
