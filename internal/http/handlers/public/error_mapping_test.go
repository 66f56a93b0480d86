package public

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/logger"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newMappingTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/gift-requests", nil)
	return c, recorder
}

func decodeErrorEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return body
}

func TestGiftRequestErrorBusinessCodes(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		respond  func(*gin.Context, error)
		wantCode int
	}{
		{name: "forbidden", err: service.ErrForbidden, respond: respondGiftRequestError, wantCode: response.CodeRoleForbidden},
		{name: "invalid transition", err: service.ErrInvalidTransition, respond: respondGiftRequestError, wantCode: response.CodeInvalidTransition},
		{name: "not found", err: service.ErrGiftRequestNotFound, respond: respondGiftRequestError, wantCode: response.CodeRecordNotFound},
		{name: "validation", err: service.NewValidationError("address.street"), respond: respondGiftRequestError, wantCode: response.CodeValidationFailed},
		{name: "policy denied", err: service.NewPolicyDeniedError("daily_limit_reached"), respond: respondGiftRequestCreateError, wantCode: response.CodePolicyDenied},
	}
	for _, item := range cases {
		t.Run(item.name, func(t *testing.T) {
			c, recorder := newMappingTestContext(t)
			item.respond(c, item.err)
			body := decodeErrorEnvelope(t, recorder)
			if body.StatusCode != item.wantCode {
				t.Fatalf("want status_code %d got %d (msg %q)", item.wantCode, body.StatusCode, body.Msg)
			}
		})
	}
}

// 策略拒绝与角色不符必须给出不同业务码，客户端据此分流提示
func TestPolicyDeniedCodeDistinctFromForbidden(t *testing.T) {
	if response.CodePolicyDenied == response.CodeRoleForbidden {
		t.Fatal("policy denied and forbidden must map to different business codes")
	}
}

func TestMappedDenialLogsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	prev := logger.L
	logger.L = zap.New(core)
	defer func() { logger.L = prev }()

	c, _ := newMappingTestContext(t)
	respondGiftRequestError(c, service.ErrInvalidTransition)

	entries := logs.FilterMessage("gift_request_denied").All()
	if len(entries) == 0 {
		t.Fatal("expected gift_request_denied warn log")
	}
	if code, ok := entries[0].ContextMap()["code"].(int64); !ok || code != response.CodeInvalidTransition {
		t.Fatalf("want code %d in log, got %v", response.CodeInvalidTransition, entries[0].ContextMap()["code"])
	}
}
