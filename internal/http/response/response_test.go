package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestOKFlattensData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OK(c, gin.H{"sessionToken": "tok", "ok": false})

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("ok should be true, got %v", body["ok"])
	}
	if body["sessionToken"] != "tok" {
		t.Fatalf("sessionToken want tok got %v", body["sessionToken"])
	}
}

func TestErrorUsesHTTPStatusAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	TooManyRequests(c, "Too many attempts. Try again later.")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status want 429 got %d", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if body.Error != "Too many attempts. Try again later." || body.RequestID != "req-1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestErrorClampsNonErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, 0, "boom")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status want 500 got %d", w.Code)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("db down")
	appErr := WrapError(CodeInternal, "Unable to reset password", cause)
	if !errors.Is(appErr, cause) {
		t.Fatalf("app error should unwrap to cause")
	}
	if appErr.Error() != "Unable to reset password: db down" {
		t.Fatalf("unexpected message: %s", appErr.Error())
	}
}
