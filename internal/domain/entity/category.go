package entity

import "time"

// Category familia de productos (diagnóstico, monitoreo, consumibles...).
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
