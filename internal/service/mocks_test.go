package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"starmf/internal/bse"
	"starmf/internal/models"
	"starmf/internal/repository"
)

var errMockDatabase = errors.New("mock database error")

// ============ Mock Order Repository ============

type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[int]*models.Order
	nextID int

	createErr error

	// перехват условного обновления для проверки гонок
	statusIfHook func(id int, from, to string) (bool, error)

	updateStatusIfCalls []string // "from->to"
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[int]*models.Order), nextID: 1}
}

func (m *mockOrderRepo) Create(order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	order.ID = m.nextID
	order.CreatedAt = time.Now()
	m.nextID++
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *mockOrderRepo) GetByID(id int) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) GetByAdvisor(advisorID string, f repository.OrderFilters) ([]*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Order
	for _, o := range m.orders {
		if o.AdvisorID != advisorID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateSubmitted(id int, bseOrderNumber, code, message string, submittedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = models.OrderStatusSubmitted
	o.BseOrderNumber = bseOrderNumber
	o.BseResponseCode = code
	o.BseResponseMsg = message
	o.SubmittedAt = &submittedAt
	return nil
}

func (m *mockOrderRepo) UpdateRejected(id int, code, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = models.OrderStatusRejected
	o.BseResponseCode = code
	o.BseResponseMsg = message
	return nil
}

func (m *mockOrderRepo) UpdateCancelled(id int, code, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = models.OrderStatusCancelled
	o.BseResponseCode = code
	o.BseResponseMsg = message
	return nil
}

func (m *mockOrderRepo) UpdateStatusIf(id int, fromStatus, toStatus, message string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateStatusIfCalls = append(m.updateStatusIfCalls, fromStatus+"->"+toStatus)
	if m.statusIfHook != nil {
		return m.statusIfHook(id, fromStatus, toStatus)
	}
	o, ok := m.orders[id]
	if !ok || o.Status != fromStatus {
		return false, nil
	}
	o.Status = toStatus
	o.BseResponseMsg = message
	return true, nil
}

func (m *mockOrderRepo) CountByStatus(advisorID, status string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.orders {
		if o.AdvisorID == advisorID && o.Status == status {
			n++
		}
	}
	return n, nil
}

// ============ Mock Client Repository ============

type mockClientRepo struct {
	clients map[string]*models.Client
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{clients: map[string]*models.Client{
		"UCC001": {ID: "UCC001", AdvisorID: "adv-1", Name: "Test Client", KYCStatus: "Y"},
		"UCC002": {ID: "UCC002", AdvisorID: "adv-2", Name: "Other Client", KYCStatus: "Y"},
	}}
}

func (m *mockClientRepo) Create(client *models.Client) error {
	m.clients[client.ID] = client
	return nil
}

func (m *mockClientRepo) GetByID(id string) (*models.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, repository.ErrClientNotFound
	}
	return c, nil
}

func (m *mockClientRepo) GetByAdvisor(advisorID string) ([]*models.Client, error) {
	var out []*models.Client
	for _, c := range m.clients {
		if c.AdvisorID == advisorID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ============ Mock Credential Repository ============

type mockCredentialRepo struct {
	creds      map[string]*models.MemberCredential
	touchCalls int
}

func newMockCredentialRepo() *mockCredentialRepo {
	return &mockCredentialRepo{creds: make(map[string]*models.MemberCredential)}
}

func (m *mockCredentialRepo) GetByAdvisor(advisorID string) (*models.MemberCredential, error) {
	c, ok := m.creds[advisorID]
	if !ok {
		return nil, repository.ErrCredentialNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCredentialRepo) Upsert(cred *models.MemberCredential) error {
	cred.UpdatedAt = time.Now()
	cp := *cred
	m.creds[cred.AdvisorID] = &cp
	return nil
}

func (m *mockCredentialRepo) TouchLastUsed(advisorID string) error {
	m.touchCalls++
	if c, ok := m.creds[advisorID]; ok {
		now := time.Now()
		c.LastUsedAt = &now
	}
	return nil
}

// ============ Mock протокольных коллабораторов ============

type mockCredentialProvider struct {
	err error
}

func (m *mockCredentialProvider) Decrypted(_ context.Context, _ string) (*models.MemberCredentials, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.MemberCredentials{
		MemberID: "10001",
		UserID:   "1000101",
		Password: "secret",
		PassKey:  "passkey",
		ARN:      "ARN-12345",
		EUIN:     "E123456",
	}, nil
}

type mockTokenProvider struct {
	token string
	err   error
	calls int
}

func (m *mockTokenProvider) OrderEntryToken(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if m.token == "" {
		return "tok123", nil
	}
	return m.token, nil
}

// mockTransport возвращает заданный result-элемент внутри SOAP конверта
type mockTransport struct {
	mu        sync.Mutex
	pipe      string // содержимое result-элемента
	err       error
	lastReq   bse.CallRequest
	callCount int
}

func (m *mockTransport) Call(_ context.Context, req bse.CallRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	element := resultElementFor(req.Action)
	return fmt.Sprintf(
		`<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope"><s:Body>`+
			`<response xmlns="http://bsestarmf.in/"><%s>%s</%s></response>`+
			`</s:Body></s:Envelope>`,
		element, m.pipe, element), nil
}

func resultElementFor(action string) string {
	switch action {
	case bse.ActionSwitchEntry:
		return bse.ResultSwitchEntry
	case bse.ActionSpreadEntry:
		return bse.ResultSpreadEntry
	case bse.ActionSIPEntry:
		return bse.ResultSIPEntry
	case bse.ActionGetPassword:
		return bse.ResultGetPassword
	default:
		return bse.ResultOrderEntry
	}
}

// ============ Mock Broadcaster ============

type mockBroadcaster struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (m *mockBroadcaster) BroadcastOrderUpdate(order *models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders = append(m.orders, &cp)
}

func (m *mockBroadcaster) statuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.orders))
	for i, o := range m.orders {
		out[i] = o.Status
	}
	return out
}
