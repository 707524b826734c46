package domain

import "time"

// Customer is the applicant on one or more loans. Guarantor contact details
// ride on the customer record for collections fan-out.
type Customer struct {
	ID              int32     `json:"id"`
	Name            string    `json:"name"`
	Mobile          string    `json:"mobile"`
	Address         *string   `json:"address,omitempty"`
	GuarantorName   *string   `json:"guarantorName,omitempty"`
	GuarantorMobile *string   `json:"guarantorMobile,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (c *Customer) Validate() error {
	if c.Name == "" {
		return ErrCustomerNameEmpty
	}
	if len(c.Name) > MaxCustomerNameLength {
		return ErrCustomerNameEmpty
	}
	return nil
}

type CustomerRepository interface {
	Create(customer *Customer) (*Customer, error)
	GetByID(id int32) (*Customer, error)
	Update(customer *Customer) (*Customer, error)
}
