package entity

import "time"

// Customer cliente (clínica, hospital, profesional o particular).
type Customer struct {
	ID        string
	FirstName string
	LastName  string
	Company   string
	Email     string
	Phone     string
	Address   string
	City      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName nombre para documentos impresos.
func (c *Customer) DisplayName() string {
	name := c.FirstName
	if c.LastName != "" {
		if name != "" {
			name += " "
		}
		name += c.LastName
	}
	if c.Company != "" {
		if name == "" {
			return c.Company
		}
		return name + " (" + c.Company + ")"
	}
	return name
}
