package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
	pkgAuth "github.com/polkiloo/foodorder/internal/pkg/auth"
	"github.com/polkiloo/foodorder/internal/server/http/dto"
	"github.com/polkiloo/foodorder/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/foodorder/internal/test"
	"github.com/polkiloo/foodorder/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, pattern, path string, handler gin.HandlerFunc, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, pattern, handler)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func submitBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(dto.SubmitOrderRequest{
		CustomerName:  "Amine",
		CustomerPhone: "0551234567",
		Items: []dto.OrderItemRequest{
			{MenuItemID: "m1", ItemNameFr: "Couscous", ItemNameAr: "كسكس", Quantity: 2, UnitPrice: 500},
		},
		TotalAmount: 1000,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func decodeSubmit(t *testing.T, resp *httptest.ResponseRecorder) dto.SubmitOrderResponse {
	t.Helper()
	var out dto.SubmitOrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
	return out
}

func TestCurrentStaff(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := CurrentStaff(c); ok {
		t.Fatal("expected no claims when not set")
	}

	c.Set(middleware.StaffContextKey, pkgAuth.Claims{StaffID: 42, Login: "chef"})
	claims, ok := CurrentStaff(c)
	if !ok || claims.StaffID != 42 {
		t.Fatalf("expected staff 42, got %+v", claims)
	}
}

func TestOrderHandlerSubmitCreated(t *testing.T) {
	id := uuid.New()
	daily := 4
	var got model.OrderRequest
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{SubmitFn: func(_ context.Context, req model.OrderRequest) (*model.OrderReceipt, error) {
		got = req
		return &model.OrderReceipt{OrderID: id, DailyNumber: &daily}, nil
	}})

	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Submit, submitBody(t))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	out := decodeSubmit(t, resp)
	if !out.Success || out.OrderID != id.String() {
		t.Fatalf("unexpected response %+v", out)
	}
	if out.DailyOrderNumber == nil || *out.DailyOrderNumber != 4 {
		t.Fatalf("expected daily number 4, got %v", out.DailyOrderNumber)
	}

	if got.CustomerName != "Amine" || got.ClaimedTotal != 1000 || len(got.Lines) != 1 {
		t.Fatalf("unexpected request passed to facade: %+v", got)
	}
	line := got.Lines[0]
	if line.MenuItemID != "m1" || line.NameFr != "Couscous" || line.NameAr != "كسكس" || line.Quantity != 2 || line.UnitPrice != 500 {
		t.Fatalf("unexpected line mapping: %+v", line)
	}
}

func TestOrderHandlerSubmitOmitsMissingDailyNumber(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{SubmitFn: func(context.Context, model.OrderRequest) (*model.OrderReceipt, error) {
		return &model.OrderReceipt{OrderID: uuid.New()}, nil
	}})
	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Submit, submitBody(t))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if bytes.Contains(resp.Body.Bytes(), []byte("daily_order_number")) {
		t.Fatalf("expected daily number to be omitted, got %s", resp.Body.String())
	}
}

func TestOrderHandlerSubmitFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"validation", &domainErrors.ValidationError{Field: "total_amount", Reason: "does not match"}, http.StatusUnprocessableEntity, "invalid total_amount: does not match"},
		{"rate limit", &domainErrors.RateLimitError{Count: 5, Limit: 5, Window: time.Hour}, http.StatusTooManyRequests, reasonRateLimited},
		{"create order", &domainErrors.StorageError{Step: usecase.StepCreateOrder, Err: errors.New("db")}, http.StatusInternalServerError, reasonCreateOrder},
		{"create lines", &domainErrors.StorageError{Step: usecase.StepCreateLines, Err: errors.New("db")}, http.StatusInternalServerError, reasonCreateLines},
		{"rate check", &domainErrors.StorageError{Step: usecase.StepRateCheck, Err: errors.New("db")}, http.StatusInternalServerError, reasonInternal},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, reasonInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewOrderHandler(testhelpers.OrderFacadeStub{SubmitFn: func(context.Context, model.OrderRequest) (*model.OrderReceipt, error) {
				return nil, tc.err
			}})
			resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Submit, submitBody(t))
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
			out := decodeSubmit(t, resp)
			if out.Success || out.Reason != tc.reason {
				t.Fatalf("unexpected response %+v", out)
			}
		})
	}
}

func TestOrderHandlerSubmitRetryAfter(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{SubmitFn: func(context.Context, model.OrderRequest) (*model.OrderReceipt, error) {
		return nil, fmt.Errorf("submit: %w", &domainErrors.RateLimitError{Count: 6, Limit: 5, Window: 90 * time.Second})
	}})
	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Submit, submitBody(t))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if got := resp.Header().Get("Retry-After"); got != "90" {
		t.Fatalf("expected Retry-After 90, got %q", got)
	}
}

func TestOrderHandlerSubmitMalformedJSON(t *testing.T) {
	called := false
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{SubmitFn: func(context.Context, model.OrderRequest) (*model.OrderReceipt, error) {
		called = true
		return nil, nil
	}})
	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Submit, []byte("{"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if called {
		t.Fatal("facade must not be called for malformed payloads")
	}
}

func TestOrderHandlerGet(t *testing.T) {
	id := uuid.New()
	daily := 2
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{OrderFn: func(_ context.Context, got uuid.UUID) (*model.Order, error) {
		if got != id {
			return nil, domainErrors.ErrNotFound
		}
		return &model.Order{
			ID:            id,
			CustomerName:  "Amine",
			CustomerPhone: "213551234567",
			Total:         1000,
			Status:        model.OrderStatusConfirmed,
			DailyNumber:   &daily,
			Lines:         []model.OrderLine{{MenuItemID: "m1", NameFr: "Couscous", Quantity: 2, UnitPrice: 500}},
		}, nil
	}})

	resp := performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/"+id.String(), handler.Get, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != id.String() || out.Status != "confirmed" || out.TotalAmount != 1000 {
		t.Fatalf("unexpected order %+v", out)
	}
	if out.CustomerPhoneDisplay != "0551 23 45 67" {
		t.Fatalf("unexpected display phone %q", out.CustomerPhoneDisplay)
	}
	if len(out.Items) != 1 || out.Items[0].Subtotal != 1000 {
		t.Fatalf("unexpected items %+v", out.Items)
	}

	resp = performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/"+uuid.NewString(), handler.Get, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/not-a-uuid", handler.Get, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestOrderHandlerGetStorageFailure(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{OrderFn: func(context.Context, uuid.UUID) (*model.Order, error) {
		return nil, errors.New("db down")
	}})
	resp := performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/"+uuid.NewString(), handler.Get, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestOrderHandlerHistory(t *testing.T) {
	var gotPhone string
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{HistoryFn: func(_ context.Context, phone string) ([]model.Order, error) {
		gotPhone = phone
		return []model.Order{{ID: uuid.New(), CustomerPhone: "213551234567"}, {ID: uuid.New(), CustomerPhone: "213551234567"}}, nil
	}})
	resp := performRequest(t, http.MethodGet, "/api/orders", "/api/orders?phone=0551234567", handler.History, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotPhone != "0551234567" {
		t.Fatalf("expected raw phone passed through, got %q", gotPhone)
	}
	var out []dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected two orders, got %d", len(out))
	}
}

func TestOrderHandlerHistoryStatuses(t *testing.T) {
	empty := NewOrderHandler(testhelpers.OrderFacadeStub{HistoryFn: func(context.Context, string) ([]model.Order, error) {
		return nil, nil
	}})
	if resp := performRequest(t, http.MethodGet, "/api/orders", "/api/orders?phone=0551234567", empty.History, nil); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	invalid := NewOrderHandler(testhelpers.OrderFacadeStub{HistoryFn: func(context.Context, string) ([]model.Order, error) {
		return nil, &domainErrors.ValidationError{Field: "phone", Reason: "invalid"}
	}})
	if resp := performRequest(t, http.MethodGet, "/api/orders", "/api/orders?phone=12", invalid.History, nil); resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}

	failing := NewOrderHandler(testhelpers.OrderFacadeStub{HistoryFn: func(context.Context, string) ([]model.Order, error) {
		return nil, errors.New("db down")
	}})
	if resp := performRequest(t, http.MethodGet, "/api/orders", "/api/orders?phone=0551234567", failing.History, nil); resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	login := testhelpers.RandomASCIIString(7, 14)
	password := testhelpers.RandomASCIIString(16, 32)
	body, _ := json.Marshal(dto.StaffLoginRequest{Login: login, Password: password})
	handler := NewAuthHandler(testhelpers.StaffFacadeStub{LoginFn: func(_ context.Context, gotLogin, gotPassword string) (string, error) {
		if gotLogin != login || gotPassword != password {
			return "", domainErrors.ErrInvalidCredentials
		}
		return "issued", nil
	}})

	resp := performRequest(t, http.MethodPost, "/login", "/login", handler.Login, body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Authorization"); got != "Bearer issued" {
		t.Fatalf("expected bearer header, got %q", got)
	}

	wrong, _ := json.Marshal(dto.StaffLoginRequest{Login: login, Password: "nope"})
	if resp := performRequest(t, http.MethodPost, "/login", "/login", handler.Login, wrong); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	if resp := performRequest(t, http.MethodPost, "/login", "/login", handler.Login, []byte("nope")); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	failing := NewAuthHandler(testhelpers.StaffFacadeStub{LoginFn: func(context.Context, string, string) (string, error) {
		return "", errors.New("db down")
	}})
	if resp := performRequest(t, http.MethodPost, "/login", "/login", failing.Login, body); resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestStaffHandlerUpdateStatus(t *testing.T) {
	id := uuid.New()
	handler := NewStaffHandler(testhelpers.StaffFacadeStub{})
	body, _ := json.Marshal(dto.StatusUpdateRequest{Status: "ready"})

	resp := performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/"+id.String()+"/status", handler.UpdateStatus, body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "ready" || out.ID != id.String() {
		t.Fatalf("unexpected order %+v", out)
	}

	if resp := performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/bad/status", handler.UpdateStatus, body); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp.Code)
	}
	if resp := performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/"+id.String()+"/status", handler.UpdateStatus, []byte("{")); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", resp.Code)
	}
}

func TestStaffHandlerUpdateStatusErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown status", &domainErrors.ValidationError{Field: "status", Reason: "unknown"}, http.StatusUnprocessableEntity},
		{"missing order", domainErrors.ErrNotFound, http.StatusNotFound},
		{"illegal transition", fmt.Errorf("completed -> ready: %w", domainErrors.ErrInvalidTransition), http.StatusConflict},
		{"storage", errors.New("db down"), http.StatusInternalServerError},
	}
	body, _ := json.Marshal(dto.StatusUpdateRequest{Status: "ready"})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewStaffHandler(testhelpers.StaffFacadeStub{UpdateStatusFn: func(context.Context, uuid.UUID, model.OrderStatus) (*model.Order, error) {
				return nil, tc.err
			}})
			resp := performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/"+uuid.NewString()+"/status", handler.UpdateStatus, body)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
		})
	}
}

func TestStaffHandlerNotifications(t *testing.T) {
	id := uuid.New()
	retryOf := int64(1)
	handler := NewStaffHandler(testhelpers.StaffFacadeStub{NotificationsFn: func(context.Context, uuid.UUID) ([]model.NotificationRecord, error) {
		return []model.NotificationRecord{
			{ID: 1, OrderID: &id, Kind: model.MessageKindSession, Status: model.DeliveryStatusFailed, ErrorCode: "63016", Attempt: 1},
			{ID: 2, OrderID: &id, Kind: model.MessageKindSession, Status: model.DeliveryStatusSent, ProviderMessageID: "SM1", Attempt: 2, RetryOf: &retryOf},
		}, nil
	}})

	resp := performRequest(t, http.MethodGet, "/orders/:id/notifications", "/orders/"+id.String()+"/notifications", handler.Notifications, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out []dto.NotificationResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].ErrorCode != "63016" || out[1].RetryOf == nil || *out[1].RetryOf != 1 {
		t.Fatalf("unexpected notifications %+v", out)
	}

	failing := NewStaffHandler(testhelpers.StaffFacadeStub{NotificationsFn: func(context.Context, uuid.UUID) ([]model.NotificationRecord, error) {
		return nil, errors.New("db down")
	}})
	if resp := performRequest(t, http.MethodGet, "/orders/:id/notifications", "/orders/"+id.String()+"/notifications", failing.Notifications, nil); resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if resp := performRequest(t, http.MethodGet, "/orders/:id/notifications", "/orders/x/notifications", handler.Notifications, nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStaffHandlerNotificationsEmpty(t *testing.T) {
	handler := NewStaffHandler(testhelpers.StaffFacadeStub{NotificationsFn: func(context.Context, uuid.UUID) ([]model.NotificationRecord, error) {
		return nil, nil
	}})
	resp := performRequest(t, http.MethodGet, "/orders/:id/notifications", "/orders/"+uuid.NewString()+"/notifications", handler.Notifications, nil)
	if resp.Code != http.StatusOK || resp.Body.String() != "[]" {
		t.Fatalf("expected empty JSON list, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	healthy := NewHealthHandler(testhelpers.OrderingFacadeStub{})
	if resp := performRequest(t, http.MethodGet, "/healthz", "/healthz", healthy.Check, nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	down := NewHealthHandler(testhelpers.OrderingFacadeStub{HealthFn: func(context.Context) error { return errors.New("down") }})
	if resp := performRequest(t, http.MethodGet, "/healthz", "/healthz", down.Check, nil); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

var _ OrderingFacade = testhelpers.OrderingFacadeStub{}
