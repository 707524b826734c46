package service

import (
	"strings"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// CustomerService manages applicant records and their guarantor contacts.
type CustomerService struct {
	customerRepo domain.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo domain.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CustomerInput contains the editable customer fields
type CustomerInput struct {
	Name            string
	Mobile          string
	Address         *string
	GuarantorName   *string
	GuarantorMobile *string
}

// CreateCustomer validates and persists a new applicant record.
func (s *CustomerService) CreateCustomer(input CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		Name:            strings.TrimSpace(input.Name),
		Mobile:          strings.TrimSpace(input.Mobile),
		Address:         input.Address,
		GuarantorName:   input.GuarantorName,
		GuarantorMobile: input.GuarantorMobile,
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	created, err := s.customerRepo.Create(customer)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("customer_id", created.ID).
		Str("name", created.Name).
		Msg("Customer created")

	return created, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(customerID int32) (*domain.Customer, error) {
	return s.customerRepo.GetByID(customerID)
}

// UpdateCustomer replaces the editable fields of an existing customer.
func (s *CustomerService) UpdateCustomer(customerID int32, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, err
	}

	customer.Name = strings.TrimSpace(input.Name)
	customer.Mobile = strings.TrimSpace(input.Mobile)
	customer.Address = input.Address
	customer.GuarantorName = input.GuarantorName
	customer.GuarantorMobile = input.GuarantorMobile
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	return s.customerRepo.Update(customer)
}
