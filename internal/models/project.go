package models

import "time"

// Project groups an ordered list of columns and a set of members.
type Project struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Name      string    `json:"name" gorm:"type:varchar(80);not null" validate:"required,min=1,max=80"`
	Profile   string    `json:"profile" validate:"max=500"`
	CreatedBy string    `json:"created_by,omitempty" gorm:"index;type:varchar(24)" validate:"omitempty,objectid"`
	CreatedAt time.Time `json:"created_at"`
	Columns   IDList    `json:"columns" validate:"dive,objectid"`
	Members   IDList    `json:"members" validate:"dive,objectid"`
}

func (p Project) Clone() Project {
	p.Columns = CopyIDs(p.Columns)
	p.Members = CopyIDs(p.Members)
	return p
}
