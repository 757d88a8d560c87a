package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
	"github.com/wybmv/backend/internal/services/media"
	messagessvc "github.com/wybmv/backend/internal/services/messages"
	"github.com/wybmv/backend/internal/transport/http/dto"
)

const testImageBase = "http://cdn.test/chat-images/"

type messageStoreStub struct {
	mu    sync.Mutex
	items []model.Message
	clock time.Time
}

func (s *messageStoreStub) Create(_ context.Context, in pgrepo.MessageWrite) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = s.clock.Add(time.Second)
	msg := model.Message{
		ID:        uuid.New(),
		MatchID:   in.MatchID,
		SenderID:  in.SenderID,
		Content:   in.Content,
		ImageURL:  in.ImageURL,
		CreatedAt: s.clock,
	}
	s.items = append(s.items, msg)
	return msg, nil
}

func (s *messageStoreStub) ListByMatch(_ context.Context, matchID uuid.UUID, since *time.Time) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, 0)
	for _, msg := range s.items {
		if msg.MatchID != matchID {
			continue
		}
		if since != nil && !msg.CreatedAt.After(*since) {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

type objectStorageStub struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *objectStorageStub) EnsureBucket(context.Context) error { return nil }

func (s *objectStorageStub) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = data
	return testImageBase + key, nil
}

func (s *objectStorageStub) KeyFromURL(raw string) (string, bool) {
	if !strings.HasPrefix(raw, testImageBase) {
		return "", false
	}
	return strings.TrimPrefix(raw, testImageBase), true
}

type messagingFixture struct {
	messages *MessagesHandler
	media    *MediaHandler
	storage  *objectStorageStub
	me       model.User
	other    model.User
	match    model.Match
}

func newMessagingFixture() messagingFixture {
	me := onboardedUser("me", enums.GenderMale)
	other := onboardedUser("other", enums.GenderFemale)
	match := newMatch(me.ID, other.ID)
	storage := &objectStorageStub{}

	svc := messagessvc.NewService(messagessvc.Dependencies{
		Matches:  newMatchStoreStub(match),
		Messages: &messageStoreStub{clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)},
		Images:   media.NewService(storage),
	})
	return messagingFixture{
		messages: NewMessagesHandler(svc),
		media:    NewMediaHandler(svc),
		storage:  storage,
		me:       me,
		other:    other,
		match:    match,
	}
}

func (fx messagingFixture) send(t *testing.T, caller uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	fx.messages.Send(rr, withIdentity(httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body)), caller))
	return rr
}

func TestMessagesSendAndListSince(t *testing.T) {
	fx := newMessagingFixture()
	matchID := fx.match.ID.String()

	first := fx.send(t, fx.me.ID, `{"match_id":"`+matchID+`","content":"  hello  "}`)
	if first.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d (%s)", first.Code, first.Body.String())
	}
	var sent dto.MessageResponse
	decodeResponse(t, first, &sent)
	if sent.Message.Content != "hello" {
		t.Fatalf("content not trimmed: %q", sent.Message.Content)
	}
	fx.send(t, fx.other.ID, `{"match_id":"`+matchID+`","content":"hi back"}`)

	rr := httptest.NewRecorder()
	fx.messages.List(rr, withIdentity(httptest.NewRequest(http.MethodGet, "/v1/messages?match_id="+matchID, nil), fx.other.ID))
	var all dto.MessagesResponse
	decodeResponse(t, rr, &all)
	if len(all.Messages) != 2 || all.Messages[0].Content != "hello" {
		t.Fatalf("unexpected history: %+v", all.Messages)
	}

	since := sent.Message.CreatedAt.Format(time.RFC3339Nano)
	rr = httptest.NewRecorder()
	fx.messages.List(rr, withIdentity(httptest.NewRequest(http.MethodGet, "/v1/messages?match_id="+matchID+"&since="+since, nil), fx.me.ID))
	var newer dto.MessagesResponse
	decodeResponse(t, rr, &newer)
	if len(newer.Messages) != 1 || newer.Messages[0].Content != "hi back" {
		t.Fatalf("unexpected messages since %s: %+v", since, newer.Messages)
	}
}

func TestMessagesRejectOutsidersWithForbidden(t *testing.T) {
	fx := newMessagingFixture()
	outsider := uuid.New()

	rr := fx.send(t, outsider, `{"match_id":"`+fx.match.ID.String()+`","content":"hello"}`)
	assertErrorCode(t, rr, http.StatusForbidden, "FORBIDDEN")

	rr = fx.send(t, fx.me.ID, `{"match_id":"`+uuid.NewString()+`","content":"hello"}`)
	assertErrorCode(t, rr, http.StatusForbidden, "FORBIDDEN")

	rr = httptest.NewRecorder()
	fx.messages.List(rr, withIdentity(httptest.NewRequest(http.MethodGet, "/v1/messages?match_id="+fx.match.ID.String(), nil), outsider))
	assertErrorCode(t, rr, http.StatusForbidden, "FORBIDDEN")
}

func TestMessagesListValidatesQuery(t *testing.T) {
	fx := newMessagingFixture()

	rr := httptest.NewRecorder()
	fx.messages.List(rr, withIdentity(httptest.NewRequest(http.MethodGet, "/v1/messages", nil), fx.me.ID))
	assertErrorCode(t, rr, http.StatusBadRequest, "VALIDATION_ERROR")

	rr = httptest.NewRecorder()
	url := "/v1/messages?match_id=" + fx.match.ID.String() + "&since=yesterday"
	fx.messages.List(rr, withIdentity(httptest.NewRequest(http.MethodGet, url, nil), fx.me.ID))
	assertErrorCode(t, rr, http.StatusBadRequest, "VALIDATION_ERROR")
}

func multipartUpload(t *testing.T, matchID, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if matchID != "" {
		if err := writer.WriteField("match_id", matchID); err != nil {
			t.Fatalf("write match_id: %v", err)
		}
	}
	if data != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/messages/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadThenAttachImage(t *testing.T) {
	fx := newMessagingFixture()

	rr := httptest.NewRecorder()
	fx.media.Upload(rr, withIdentity(multipartUpload(t, fx.match.ID.String(), "cat.png", "image/png", []byte("png-bytes")), fx.me.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected upload status: got %d (%s)", rr.Code, rr.Body.String())
	}
	var uploaded dto.UploadImageResponse
	decodeResponse(t, rr, &uploaded)
	if !strings.HasPrefix(uploaded.ImageURL, testImageBase+fx.match.ID.String()+"/"+fx.me.ID.String()+"/") {
		t.Fatalf("unexpected image url: %s", uploaded.ImageURL)
	}
	if !strings.HasSuffix(uploaded.FileName, ".png") {
		t.Fatalf("unexpected file name: %s", uploaded.FileName)
	}

	sent := fx.send(t, fx.me.ID, `{"match_id":"`+fx.match.ID.String()+`","content":"look","image_url":"`+uploaded.ImageURL+`"}`)
	var msg dto.MessageResponse
	decodeResponse(t, sent, &msg)
	if msg.Message.ImageURL == nil || *msg.Message.ImageURL != uploaded.ImageURL {
		t.Fatalf("image not attached: %+v", msg.Message)
	}

	foreign := fx.send(t, fx.me.ID, `{"match_id":"`+fx.match.ID.String()+`","content":"look","image_url":"`+testImageBase+uuid.NewString()+`/x.png"}`)
	assertErrorCode(t, foreign, http.StatusBadRequest, "INVALID_INPUT")
}

func TestUploadRejectsBadInput(t *testing.T) {
	fx := newMessagingFixture()
	matchID := fx.match.ID.String()

	tests := []struct {
		name   string
		caller uuid.UUID
		req    func() *http.Request
		status int
		code   string
	}{
		{
			name:   "not an image",
			caller: fx.me.ID,
			req:    func() *http.Request { return multipartUpload(t, matchID, "notes.txt", "text/plain", []byte("hi")) },
			status: http.StatusBadRequest,
			code:   "INVALID_INPUT",
		},
		{
			name:   "missing file",
			caller: fx.me.ID,
			req:    func() *http.Request { return multipartUpload(t, matchID, "", "", nil) },
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "missing match id",
			caller: fx.me.ID,
			req:    func() *http.Request { return multipartUpload(t, "", "cat.png", "image/png", []byte("png")) },
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "outsider",
			caller: uuid.New(),
			req:    func() *http.Request { return multipartUpload(t, matchID, "cat.png", "image/png", []byte("png")) },
			status: http.StatusForbidden,
			code:   "FORBIDDEN",
		},
		{
			name:   "too large",
			caller: fx.me.ID,
			req: func() *http.Request {
				return multipartUpload(t, matchID, "big.png", "image/png", bytes.Repeat([]byte{1}, media.MaxImageBytes+1))
			},
			status: http.StatusBadRequest,
			code:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			fx.media.Upload(rr, withIdentity(tt.req(), tt.caller))
			assertErrorCode(t, rr, tt.status, tt.code)
		})
	}
	if len(fx.storage.objects) != 0 {
		t.Fatalf("rejected uploads reached storage: %d objects", len(fx.storage.objects))
	}
}
