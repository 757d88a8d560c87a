package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
	gatesvc "github.com/wybmv/backend/internal/services/gate"
	profilesvc "github.com/wybmv/backend/internal/services/profiles"
	"github.com/wybmv/backend/internal/transport/http/dto"
)

func newProfileHandler(users *userStoreStub) *ProfileHandler {
	return NewProfileHandler(profilesvc.NewService(users, gatesvc.NewService(users, nil), nil))
}

func TestProfileOnboardingUpdate(t *testing.T) {
	fresh := model.User{ID: uuid.New()}
	handler := newProfileHandler(newUserStoreStub(fresh))

	body := `{"anonymous_name":" night_owl ","gender":"Female","whatsapp_number":"+39 333 123 4567",` +
		`"room_number":"PADIGLIONE C-201","hobbies":["Music","Cinema","Travel"]}`
	rr := httptest.NewRecorder()
	handler.Update(rr, withIdentity(httptest.NewRequest(http.MethodPut, "/v1/profile", strings.NewReader(body)), fresh.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d (%s)", rr.Code, rr.Body.String())
	}

	var payload dto.ProfileResponse
	decodeResponse(t, rr, &payload)
	if payload.User.AnonymousName != "night_owl" {
		t.Fatalf("handle not trimmed: %q", payload.User.AnonymousName)
	}
	if payload.User.WhatsAppNumber == nil || *payload.User.WhatsAppNumber != "+393331234567" {
		t.Fatalf("unexpected whatsapp: %v", payload.User.WhatsAppNumber)
	}
	if payload.User.DisplayName != nil {
		t.Fatalf("empty display name should be null, got %q", *payload.User.DisplayName)
	}
}

func TestProfileUpdateKeepsStoredWhatsApp(t *testing.T) {
	ready := onboardedUser("owl", enums.GenderMale)
	handler := newProfileHandler(newUserStoreStub(ready))

	body := `{"anonymous_name":"owl","gender":"Male","whatsapp_number":"+441234567890"}`
	rr := httptest.NewRecorder()
	handler.Update(rr, withIdentity(httptest.NewRequest(http.MethodPut, "/v1/profile", strings.NewReader(body)), ready.ID))

	var payload dto.ProfileResponse
	decodeResponse(t, rr, &payload)
	if payload.User.WhatsAppNumber == nil || *payload.User.WhatsAppNumber != ready.WhatsApp {
		t.Fatalf("stored whatsapp was overwritten: %v", payload.User.WhatsAppNumber)
	}
}

func TestProfileUpdateErrors(t *testing.T) {
	first := onboardedUser("first", enums.GenderMale)
	second := onboardedUser("second", enums.GenderMale)
	mover := onboardedUser("mover", enums.GenderMale)
	mover.Room = "PADIGLIONE D-101"
	handler := newProfileHandler(newUserStoreStub(first, second, mover))

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "bad gender", body: `{"anonymous_name":"mover","gender":"Other"}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "unknown room", body: `{"anonymous_name":"mover","gender":"Male","room_number":"ITACA-999"}`, status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "full room", body: `{"anonymous_name":"mover","gender":"Male","room_number":"` + first.Room + `"}`, status: http.StatusConflict, code: "CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.Update(rr, withIdentity(httptest.NewRequest(http.MethodPut, "/v1/profile", strings.NewReader(tt.body)), mover.ID))
			assertErrorCode(t, rr, tt.status, tt.code)
		})
	}
}
