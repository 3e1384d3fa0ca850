package domain

import "time"

// Court корт. Для бронирования доступен только на чтение
type Court struct {
	ID        int64
	Name      string
	Type      string
	Capacity  int
	Surface   *string
	DeletedAt *time.Time
}

// IsDeleted returns true if the court was soft-deleted
func (c *Court) IsDeleted() bool {
	return c.DeletedAt != nil
}
