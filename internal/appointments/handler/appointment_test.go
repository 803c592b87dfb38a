package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "motoagenda/pkg/errors"
	httputil "motoagenda/pkg/http"
	"motoagenda/pkg/logger"
	"motoagenda/pkg/model"
)

// Mock service for testing
type mockAppointmentService struct {
	createFunc    func(ctx context.Context, req *model.AppointmentRequest) (*model.BookingConfirmation, error)
	fullDatesFunc func(ctx context.Context) ([]string, error)
	createCalls   int
}

func (m *mockAppointmentService) Create(ctx context.Context, req *model.AppointmentRequest) (*model.BookingConfirmation, error) {
	m.createCalls++
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &model.BookingConfirmation{}, nil
}

func (m *mockAppointmentService) ListFullDates(ctx context.Context) ([]string, error) {
	if m.fullDatesFunc != nil {
		return m.fullDatesFunc(ctx)
	}
	return []string{}, nil
}

func newTestRouter(svc *mockAppointmentService) *httprouter.Router {
	router := httprouter.New()
	NewAppointmentHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate_Success(t *testing.T) {
	var received *model.AppointmentRequest
	svc := &mockAppointmentService{
		createFunc: func(ctx context.Context, req *model.AppointmentRequest) (*model.BookingConfirmation, error) {
			received = req
			return &model.BookingConfirmation{
				Message:  "Agendamento confirmado para 2024-06-01 às 09:00",
				WhatsApp: "https://wa.me/5521974438039?text=x",
			}, nil
		},
	}

	body := `{"nome":"Ana","telefone":"21999990000","veiculo":"Yamaha Fazer","tipo_servico":"Óleo","data":"2024-06-01","hora":"09:00"}`
	req := httptest.NewRequest(http.MethodPost, "/agendar", strings.NewReader(body))
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp BookingResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Message != "Agendamento confirmado para 2024-06-01 às 09:00" || resp.WhatsApp == "" {
		t.Errorf("unexpected response %+v", resp)
	}
	if received.Name != "Ana" || received.ServiceType != "Óleo" || received.Description != "" {
		t.Errorf("request not decoded as expected: %+v", received)
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"nome":`},
		{name: "number where text expected", body: `{"nome":"Ana","telefone":21999990000}`},
		{name: "array body", body: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAppointmentService{}
			w := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/agendar", strings.NewReader(tt.body)))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp httputil.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Success || resp.Error != MsgInvalidBody {
				t.Errorf("unexpected envelope %+v", resp)
			}
			if svc.createCalls != 0 {
				t.Error("service must not be called for an unreadable body")
			}
		})
	}
}

func TestCreate_OversizedBody(t *testing.T) {
	svc := &mockAppointmentService{}
	body := `{"nome":"Ana","telefone":"21999990000","veiculo":"Yamaha Fazer"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/agendar", strings.NewReader(body))
	req.Body = http.MaxBytesReader(w, req.Body, 16)
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
	var resp httputil.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != apperrors.CodePayloadTooLarge {
		t.Errorf("code = %s, want %s", resp.Code, apperrors.CodePayloadTooLarge)
	}
	if limit, _ := resp.Details["limit_bytes"].(float64); limit != 16 {
		t.Errorf("details = %v, want limit_bytes 16", resp.Details)
	}
	if svc.createCalls != 0 {
		t.Error("service must not be called for an oversized body")
	}
}

func TestCreate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing fields",
			err:        apperrors.Validation("Campos obrigatórios faltando.", map[string]any{"fields": []string{"hora"}}),
			wantStatus: http.StatusBadRequest,
			wantError:  "Campos obrigatórios faltando.",
		},
		{
			name:       "capacity",
			err:        apperrors.CapacityExceeded("Limite diário de 3 motos atingido para esta data."),
			wantStatus: http.StatusBadRequest,
			wantError:  "Limite diário de 3 motos atingido para esta data.",
		},
		{
			name:       "storage",
			err:        apperrors.Storage("Erro ao salvar agendamento.", errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Erro ao salvar agendamento.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAppointmentService{
				createFunc: func(ctx context.Context, req *model.AppointmentRequest) (*model.BookingConfirmation, error) {
					return nil, tt.err
				},
			}
			w := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/agendar", strings.NewReader(`{}`)))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			raw := w.Body.String()
			if strings.Contains(raw, "disk full") {
				t.Errorf("storage cause leaked: %s", raw)
			}

			var resp httputil.ErrorResponse
			if err := json.Unmarshal([]byte(raw), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Success || resp.Error != tt.wantError {
				t.Errorf("unexpected envelope %+v", resp)
			}
		})
	}
}

func TestFullDates(t *testing.T) {
	tests := []struct {
		name     string
		dates    []string
		wantBody string
	}{
		{name: "some full", dates: []string{"2024-06-01", "2024-06-03"}, wantBody: `{"success":true,"datas":["2024-06-01","2024-06-03"]}`},
		{name: "none full", dates: []string{}, wantBody: `{"success":true,"datas":[]}`},
		{name: "nil slice", dates: nil, wantBody: `{"success":true,"datas":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAppointmentService{
				fullDatesFunc: func(ctx context.Context) ([]string, error) {
					return tt.dates, nil
				},
			}
			w := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datas-cheias", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}
}

func TestFullDates_StorageError(t *testing.T) {
	svc := &mockAppointmentService{
		fullDatesFunc: func(ctx context.Context) ([]string, error) {
			return nil, apperrors.Storage("Erro no banco de dados.", errors.New("locked"))
		},
	}
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datas-cheias", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var resp httputil.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "Erro no banco de dados." {
		t.Errorf("error = %q", resp.Error)
	}
}
