package models

import "gorm.io/gorm"

// A NULL JSON column scans into a nil slice; these hooks keep the
// reference collections serialising as [] instead of null.

func (u *User) AfterFind(*gorm.DB) error {
	*u = u.Clone()
	return nil
}

func (p *Project) AfterFind(*gorm.DB) error {
	*p = p.Clone()
	return nil
}

func (c *Column) AfterFind(*gorm.DB) error {
	*c = c.Clone()
	return nil
}
