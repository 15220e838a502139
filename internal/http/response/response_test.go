package response

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 20, 41)
	if p.TotalPage != 3 || p.Page != 2 || p.PageSize != 20 || p.Total != 41 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if BuildPagination(1, 0, 10).TotalPage != 0 {
		t.Fatalf("zero page size should not divide")
	}
}

func TestFailWritesErrorKindAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Fail(c, WrapError(CodeConflict, "duplicate", errors.New("boom")).WithKind("duplicate_active_coupon"))

	var resp struct {
		StatusCode int                    `json:"status_code"`
		Msg        string                 `json:"msg"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != CodeConflict || resp.Msg != "duplicate" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Data["error_kind"] != "duplicate_active_coupon" || resp.Data["request_id"] != "req-1" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := WrapError(CodeInternal, "save failed", errors.New("db down"))
	if err.Error() != "save failed: db down" || !errors.Is(err, err.Err) {
		t.Fatalf("unexpected error text: %s", err.Error())
	}
	if WrapError(CodeBadRequest, "bad", nil).Error() != "bad" {
		t.Fatalf("nil cause should only print message")
	}
}

func TestSuccessWithPageFlattensEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessWithPage(c, []int{1, 2}, BuildPagination(1, 2, 5))

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["status_code"] != float64(CodeOK) || resp["msg"] != "success" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	pagination, ok := resp["pagination"].(map[string]interface{})
	if !ok || pagination["total_page"] != float64(3) {
		t.Fatalf("unexpected pagination: %+v", resp["pagination"])
	}
}

func TestErrorWithoutRequestIDHasNullData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, CodeNotFound, "missing")

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["status_code"] != float64(CodeNotFound) || resp["data"] != nil {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}
