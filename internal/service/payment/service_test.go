package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/service/event"
	"github.com/medibook/booking-api/pkg/gateway/razorpay"
)

const testSecret = "test-gateway-secret"

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	return hex.EncodeToString(mac.Sum(nil))
}

type fakeGateway struct {
	orderErr   error
	lastAmount int64
	lastCurr   string
	lastRcpt   string
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*razorpay.Order, error) {
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	g.lastAmount = amount
	g.lastCurr = currency
	g.lastRcpt = receipt
	return &razorpay.Order{
		ID:       "order_test123",
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return hmac.Equal([]byte(sign(orderID, paymentID)), []byte(signature))
}

type fakeAppointmentRepo struct {
	mu            sync.Mutex
	appointments  map[uuid.UUID]*model.Appointment
	markPaidCalls int
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *apt
	f.appointments[apt.ID] = &copied
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	apt, ok := f.appointments[id]
	if !ok {
		return nil, model.ErrAppointmentNotFound
	}
	copied := *apt
	return &copied, nil
}

func (f *fakeAppointmentRepo) ListByPatient(_ context.Context, _ uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) MarkCancelled(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	apt, ok := f.appointments[id]
	if !ok || apt.Cancelled || apt.IsCompleted {
		return false, nil
	}
	apt.Cancelled = true
	return true, nil
}

func (f *fakeAppointmentRepo) MarkPaid(_ context.Context, id uuid.UUID, orderID, paymentID, signature string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markPaidCalls++
	apt, ok := f.appointments[id]
	if !ok || apt.Cancelled || apt.Paid {
		return false, nil
	}
	apt.Paid = true
	apt.OrderID = &orderID
	apt.PaymentID = &paymentID
	apt.Signature = &signature
	return true, nil
}

func (f *fakeAppointmentRepo) MarkCompleted(_ context.Context, id, doctorID uuid.UUID) (bool, error) {
	return false, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, ev *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}

type fixture struct {
	svc     *Service
	repo    *fakeAppointmentRepo
	gateway *fakeGateway
	outbox  *fakeOutboxRepo
	apt     *model.Appointment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeAppointmentRepo()
	gateway := &fakeGateway{}
	outbox := &fakeOutboxRepo{}

	apt := &model.Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		SlotDate:  "10_6_2025",
		SlotTime:  "10:00 AM",
		Amount:    500,
	}
	require.NoError(t, repo.Create(context.Background(), apt))

	events := event.NewService(outbox, zerolog.Nop())
	svc := NewService(repo, gateway, events, nil, zerolog.Nop())

	return &fixture{svc: svc, repo: repo, gateway: gateway, outbox: outbox, apt: apt}
}

func TestCreateOrderAmountInPaise(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CreateOrder(context.Background(), f.apt.ID)
	require.NoError(t, err)

	assert.Equal(t, "rzp_test_key", result.Key)
	assert.Equal(t, int64(50000), result.Order.Amount)
	assert.Equal(t, "INR", f.gateway.lastCurr)
	assert.Equal(t, fmt.Sprintf("order_rcptid_%s", f.apt.ID), f.gateway.lastRcpt)
}

func TestCreateOrderNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrAppointmentNotFound)
}

func TestCreateOrderCancelledRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.MarkCancelled(context.Background(), f.apt.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(context.Background(), f.apt.ID)
	assert.ErrorIs(t, err, model.ErrAppointmentCancelled)
}

func TestCreateOrderGatewayFailure(t *testing.T) {
	f := newFixture(t)
	f.gateway.orderErr = errors.New("connection refused")

	_, err := f.svc.CreateOrder(context.Background(), f.apt.ID)
	assert.ErrorIs(t, err, model.ErrGatewayUnavailable)
}

func verifyReq(f *fixture, orderID, paymentID, signature string) *model.VerifyPaymentRequest {
	return &model.VerifyPaymentRequest{
		AppointmentID: f.apt.ID,
		OrderID:       orderID,
		PaymentID:     paymentID,
		Signature:     signature,
	}
}

func TestVerifySuccess(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Verify(context.Background(), verifyReq(f, "order_1", "pay_1", sign("order_1", "pay_1")))
	require.NoError(t, err)

	stored, err := f.repo.Get(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	require.NotNil(t, stored.OrderID)
	assert.Equal(t, "order_1", *stored.OrderID)
	require.NotNil(t, stored.PaymentID)
	assert.Equal(t, "pay_1", *stored.PaymentID)
}

func TestVerifyTamperedSignature(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Verify(context.Background(), verifyReq(f, "order_1", "pay_1", sign("order_1", "pay_other")))
	assert.ErrorIs(t, err, model.ErrInvalidSignature)

	// No state change of any kind.
	stored, err := f.repo.Get(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.False(t, stored.Paid)
	assert.Nil(t, stored.OrderID)
	assert.Equal(t, int64(500), stored.Amount)
	assert.Zero(t, f.repo.markPaidCalls)
}

func TestVerifyRedeliveryIdempotent(t *testing.T) {
	f := newFixture(t)

	req := verifyReq(f, "order_1", "pay_1", sign("order_1", "pay_1"))
	require.NoError(t, f.svc.Verify(context.Background(), req))
	calls := f.repo.markPaidCalls

	// Same callback delivered again: success, no second transition.
	require.NoError(t, f.svc.Verify(context.Background(), req))
	assert.Equal(t, calls, f.repo.markPaidCalls)

	stored, err := f.repo.Get(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.Equal(t, "order_1", *stored.OrderID)
}

func TestVerifyAfterCancelRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.MarkCancelled(context.Background(), f.apt.ID)
	require.NoError(t, err)

	err = f.svc.Verify(context.Background(), verifyReq(f, "order_1", "pay_1", sign("order_1", "pay_1")))
	assert.ErrorIs(t, err, model.ErrAppointmentCancelled)

	stored, err := f.repo.Get(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.False(t, stored.Paid)
}

func TestVerifyNotFound(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		AppointmentID: uuid.New(),
		OrderID:       "order_1",
		PaymentID:     "pay_1",
		Signature:     sign("order_1", "pay_1"),
	})
	assert.ErrorIs(t, err, model.ErrAppointmentNotFound)
}

func TestVerifyEmitsPaidEvent(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Verify(context.Background(), verifyReq(f, "order_1", "pay_1", sign("order_1", "pay_1"))))

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, model.EventAppointmentPaid, f.outbox.events[0].EventType)
}
