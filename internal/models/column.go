package models

// Column is a kanban column inside a project holding an ordered list of tasks.
type Column struct {
	ID            string `json:"id" gorm:"primaryKey;type:varchar(24)"`
	ParentProject string `json:"parent_project" gorm:"index;type:varchar(24);not null" validate:"required,objectid"`
	Name          string `json:"name" gorm:"type:varchar(80);not null" validate:"required,min=1,max=80"`
	Tasks         IDList `json:"tasks" validate:"dive,objectid"`
}

// TableName avoids the reserved-looking "columns" table name.
func (Column) TableName() string {
	return "board_columns"
}

func (c Column) Clone() Column {
	c.Tasks = CopyIDs(c.Tasks)
	return c
}
