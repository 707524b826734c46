package testutil

import (
	"context"
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/emitrack/emitrack-backend/internal/websocket"
	"github.com/jackc/pgx/v5"
)

// MockCustomerRepository is a mock implementation of domain.CustomerRepository
type MockCustomerRepository struct {
	Customers map[int32]*domain.Customer
	NextID    int32
}

// NewMockCustomerRepository creates a new MockCustomerRepository
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		Customers: make(map[int32]*domain.Customer),
		NextID:    1,
	}
}

// Create creates a new customer
func (m *MockCustomerRepository) Create(customer *domain.Customer) (*domain.Customer, error) {
	customer.ID = m.NextID
	m.NextID++
	m.Customers[customer.ID] = customer
	return customer, nil
}

// GetByID retrieves a customer by ID
func (m *MockCustomerRepository) GetByID(id int32) (*domain.Customer, error) {
	if customer, ok := m.Customers[id]; ok {
		return customer, nil
	}
	return nil, domain.ErrCustomerNotFound
}

// Update updates an existing customer
func (m *MockCustomerRepository) Update(customer *domain.Customer) (*domain.Customer, error) {
	if _, ok := m.Customers[customer.ID]; !ok {
		return nil, domain.ErrCustomerNotFound
	}
	m.Customers[customer.ID] = customer
	return customer, nil
}

// AddCustomer adds a customer to the mock repository (helper for tests)
func (m *MockCustomerRepository) AddCustomer(customer *domain.Customer) {
	m.Customers[customer.ID] = customer
	if customer.ID >= m.NextID {
		m.NextID = customer.ID + 1
	}
}

// MockLoanRepository is a mock implementation of domain.LoanRepository
type MockLoanRepository struct {
	Loans    map[int32]*domain.Loan
	ByNumber map[string]*domain.Loan
	NextID   int32
	ListFn   func(filter domain.LoanFilter) ([]*domain.Loan, error)
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		Loans:    make(map[int32]*domain.Loan),
		ByNumber: make(map[string]*domain.Loan),
		NextID:   1,
	}
}

// Create creates a new loan
func (m *MockLoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	loan.ID = m.NextID
	m.NextID++
	m.Loans[loan.ID] = loan
	m.ByNumber[loan.LoanNumber] = loan
	return loan, nil
}

// CreateTx creates a new loan within a transaction
func (m *MockLoanRepository) CreateTx(tx any, loan *domain.Loan) (*domain.Loan, error) {
	return m.Create(loan)
}

// GetByID retrieves a loan by ID
func (m *MockLoanRepository) GetByID(id int32) (*domain.Loan, error) {
	if loan, ok := m.Loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

// GetByNumber retrieves a loan by its loan number
func (m *MockLoanRepository) GetByNumber(loanNumber string) (*domain.Loan, error) {
	if loan, ok := m.ByNumber[loanNumber]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

// List returns all loans matching the filter
func (m *MockLoanRepository) List(filter domain.LoanFilter) ([]*domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(filter)
	}
	loans := make([]*domain.Loan, 0, len(m.Loans))
	for id := int32(1); id < m.NextID; id++ {
		loan, ok := m.Loans[id]
		if !ok {
			continue
		}
		if filter.SeizedOnly && !loan.IsSeized {
			continue
		}
		if filter.Status != "" && loan.Status != filter.Status {
			continue
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

// Update updates an existing loan
func (m *MockLoanRepository) Update(loan *domain.Loan) (*domain.Loan, error) {
	if _, ok := m.Loans[loan.ID]; !ok {
		return nil, domain.ErrLoanNotFound
	}
	m.Loans[loan.ID] = loan
	m.ByNumber[loan.LoanNumber] = loan
	return loan, nil
}

// UpdateTx updates an existing loan within a transaction
func (m *MockLoanRepository) UpdateTx(tx any, loan *domain.Loan) (*domain.Loan, error) {
	return m.Update(loan)
}

// AddLoan adds a loan to the mock repository (helper for tests)
func (m *MockLoanRepository) AddLoan(loan *domain.Loan) {
	m.Loans[loan.ID] = loan
	m.ByNumber[loan.LoanNumber] = loan
	if loan.ID >= m.NextID {
		m.NextID = loan.ID + 1
	}
}

// MockInstallmentRepository is a mock implementation of
// domain.InstallmentRepository. Update enforces the same version check as the
// real repository.
type MockInstallmentRepository struct {
	Installments map[int32]*domain.Installment
	NextID       int32
	UpdateFn     func(installment *domain.Installment) (*domain.Installment, error)
}

// NewMockInstallmentRepository creates a new MockInstallmentRepository
func NewMockInstallmentRepository() *MockInstallmentRepository {
	return &MockInstallmentRepository{
		Installments: make(map[int32]*domain.Installment),
		NextID:       1,
	}
}

// CreateBatchTx creates installments within a transaction
func (m *MockInstallmentRepository) CreateBatchTx(tx any, installments []*domain.Installment) error {
	for _, inst := range installments {
		inst.ID = m.NextID
		m.NextID++
		m.Installments[inst.ID] = inst
	}
	return nil
}

// GetByID retrieves an installment by ID
func (m *MockInstallmentRepository) GetByID(id int32) (*domain.Installment, error) {
	if inst, ok := m.Installments[id]; ok {
		return inst, nil
	}
	return nil, domain.ErrInstallmentNotFound
}

// GetByLoanID returns the loan's installments ordered by number
func (m *MockInstallmentRepository) GetByLoanID(loanID int32) ([]*domain.Installment, error) {
	installments := make([]*domain.Installment, 0)
	for id := int32(1); id < m.NextID; id++ {
		inst, ok := m.Installments[id]
		if !ok || inst.LoanID != loanID {
			continue
		}
		installments = append(installments, inst)
	}
	for i := 1; i < len(installments); i++ {
		for j := i; j > 0 && installments[j-1].Number > installments[j].Number; j-- {
			installments[j-1], installments[j] = installments[j], installments[j-1]
		}
	}
	return installments, nil
}

// Update persists the installment if its version is current
func (m *MockInstallmentRepository) Update(installment *domain.Installment) (*domain.Installment, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(installment)
	}
	current, ok := m.Installments[installment.ID]
	if !ok {
		return nil, domain.ErrInstallmentNotFound
	}
	if current.Version != installment.Version {
		return nil, domain.ErrConcurrentModification
	}
	installment.Version++
	m.Installments[installment.ID] = installment
	return installment, nil
}

// DeleteWithoutPaymentsTx removes the loan's installments without payments
func (m *MockInstallmentRepository) DeleteWithoutPaymentsTx(tx any, loanID int32) error {
	for id, inst := range m.Installments {
		if inst.LoanID == loanID && !inst.HasPayments() {
			delete(m.Installments, id)
		}
	}
	return nil
}

// AddInstallment adds an installment to the mock repository (helper for tests)
func (m *MockInstallmentRepository) AddInstallment(inst *domain.Installment) {
	m.Installments[inst.ID] = inst
	if inst.ID >= m.NextID {
		m.NextID = inst.ID + 1
	}
}

// FixedClock is a domain.Clock pinned to a single instant
type FixedClock struct {
	Time time.Time
}

// NewFixedClock creates a clock pinned to the given instant
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{Time: t}
}

// Now returns the pinned instant
func (c *FixedClock) Now() time.Time { return c.Time }

// Today returns the pinned instant truncated to midnight UTC
func (c *FixedClock) Today() time.Time {
	y, m, d := c.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Advance moves the clock forward
func (c *FixedClock) Advance(d time.Duration) {
	c.Time = c.Time.Add(d)
}

// FakeTx satisfies pgx.Tx for service tests. Only Commit and Rollback are
// implemented; the embedded nil interface panics if anything else is called.
type FakeTx struct {
	pgx.Tx
	Committed  bool
	RolledBack bool
}

// Commit marks the transaction committed
func (t *FakeTx) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

// Rollback marks the transaction rolled back; a no-op after Commit, matching
// the deferred-rollback pattern.
func (t *FakeTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// FakeTxStarter hands out FakeTx instances and records them
type FakeTxStarter struct {
	Txs []*FakeTx
}

// Begin returns a new FakeTx
func (s *FakeTxStarter) Begin(ctx context.Context) (pgx.Tx, error) {
	tx := &FakeTx{}
	s.Txs = append(s.Txs, tx)
	return tx, nil
}

// CapturingPublisher records published events for assertions
type CapturingPublisher struct {
	Events []websocket.Event
}

// Publish appends the event to the captured list
func (p *CapturingPublisher) Publish(event websocket.Event) {
	p.Events = append(p.Events, event)
}
