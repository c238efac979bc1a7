package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"formscan/internal/domain"
	"formscan/internal/handler"
	"formscan/internal/service"
	"formscan/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAssessmentHandler() (*handler.AssessmentHandler, *mocks.MockAssessmentService) {
	mockSvc := new(mocks.MockAssessmentService)
	return handler.NewAssessmentHandler(mockSvc), mockSvc
}

func newContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	c.Request, _ = http.NewRequest(method, target, r)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAssessmentHandler_Create(t *testing.T) {
	h, mockSvc := newAssessmentHandler()

	created := &domain.Assessment{ID: uuid.New(), FormType: "PLS-5", Record: domain.NewAssessmentRecord("PLS-5")}
	mockSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(in *service.IngestInput) bool {
		return in.DocumentType == "PLS-5" && in.SourceText == "ocr text" && strings.Contains(string(in.Payload), "childInfo")
	})).Return(created, nil)

	c, w := newContext(http.MethodPost, "/api/v1/assessments",
		`{"payload":{"childInfo":{"name":"Harry S."}},"source_text":"ocr text","document_type":"PLS-5"}`)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestAssessmentHandler_Create_InvalidBody(t *testing.T) {
	h, mockSvc := newAssessmentHandler()

	c, w := newContext(http.MethodPost, "/api/v1/assessments", `not json`)
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
}

func TestAssessmentHandler_Create_EmptyPayload(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	mockSvc.On("Ingest", mock.Anything, mock.Anything).Return(nil, domain.ErrEmptyPayload)

	c, w := newContext(http.MethodPost, "/api/v1/assessments", `{}`)
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_PAYLOAD", decode(t, w).Error.Code)
}

func TestAssessmentHandler_Create_PayloadTooLarge(t *testing.T) {
	h, mockSvc := newAssessmentHandler()

	c, w := newContext(http.MethodPost, "/api/v1/assessments", `{"payload":{"a":"0123456789"}}`)
	c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 8)
	h.Create(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decode(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
}

func TestAssessmentHandler_Preview(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	preview := &service.PreviewResult{Record: domain.NewAssessmentRecord("PLS-5"), TypeSource: domain.TypeSourcePayload}
	mockSvc.On("Preview", mock.Anything, mock.Anything).Return(preview, nil)

	c, w := newContext(http.MethodPost, "/api/v1/assessments/preview", `{"payload":"{\"formType\":\"PLS-5\"}"}`)
	h.Preview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "payload", data["type_source"])
}

func TestAssessmentHandler_Classify(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	result := domain.ClassificationResult{IsDocument: true, DocumentType: "PLS-5", Confidence: 0.5}
	mockSvc.On("Classify", mock.Anything, "Preschool Language Scales").Return(result)

	c, w := newContext(http.MethodPost, "/api/v1/classify", `{"text":"Preschool Language Scales"}`)
	h.Classify(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "PLS-5", data["documentType"])
	assert.Equal(t, 0.5, data["confidence"])
}

func TestAssessmentHandler_Classify_MissingText(t *testing.T) {
	h, _ := newAssessmentHandler()

	c, w := newContext(http.MethodPost, "/api/v1/classify", `{}`)
	h.Classify(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssessmentHandler_GetByID(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	id := uuid.New()
	mockSvc.On("GetByID", mock.Anything, id).Return(&domain.Assessment{ID: id}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/assessments/"+id.String(), "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAssessmentHandler_GetByID_NotFound(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	id := uuid.New()
	mockSvc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrAssessmentNotFound)

	c, w := newContext(http.MethodGet, "/api/v1/assessments/"+id.String(), "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ASSESSMENT_NOT_FOUND", decode(t, w).Error.Code)
}

func TestAssessmentHandler_GetByID_InvalidID(t *testing.T) {
	h, mockSvc := newAssessmentHandler()

	c, w := newContext(http.MethodGet, "/api/v1/assessments/nope", "")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAssessmentHandler_List(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	filter := domain.AssessmentFilter{FormType: "PLS-5", ValidationStatus: domain.ValidationStatusWarning, Offset: 10, Limit: 5}
	mockSvc.On("List", mock.Anything, filter).Return([]domain.Assessment{{ID: uuid.New()}}, 11, nil)

	c, w := newContext(http.MethodGet, "/api/v1/assessments?form_type=PLS-5&validation_status=WARNING&offset=10&limit=5", "")
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, handler.PagMeta{Total: 11, Offset: 10, Limit: 5}, *resp.Meta)
	mockSvc.AssertExpectations(t)
}

func TestAssessmentHandler_List_InvalidFilter(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	mockSvc.On("List", mock.Anything, mock.Anything).Return(nil, 0, domain.ErrInvalidFilter)

	c, w := newContext(http.MethodGet, "/api/v1/assessments?validation_status=maybe", "")
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILTER", decode(t, w).Error.Code)
}

func TestAssessmentHandler_Update(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	id := uuid.New()
	mockSvc.On("UpdateRecord", mock.Anything, mock.MatchedBy(func(in *service.UpdateRecordInput) bool {
		return in.ID == id && strings.Contains(string(in.Record), `"formType"`)
	})).Return(&domain.Assessment{ID: id}, nil)

	c, w := newContext(http.MethodPut, "/api/v1/assessments/"+id.String(), `{"record":{"formType":"PLS-5"}}`)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAssessmentHandler_Update_InvalidRecord(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	id := uuid.New()
	mockSvc.On("UpdateRecord", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidRecord)

	c, w := newContext(http.MethodPut, "/api/v1/assessments/"+id.String(), `{"record":{"scores":[]}}`)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_RECORD", decode(t, w).Error.Code)
}

func TestAssessmentHandler_Delete(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	id := uuid.New()
	mockSvc.On("Delete", mock.Anything, id).Return(nil)

	c, w := newContext(http.MethodDelete, "/api/v1/assessments/"+id.String(), "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAssessmentHandler_Export_CSV(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	filter := domain.AssessmentFilter{FormType: "PLS-5"}
	mockSvc.On("Export", mock.Anything, filter, service.ExportCSV, mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = args.Get(3).(io.Writer).Write([]byte("a,b\n"))
		}).Return(nil)

	c, w := newContext(http.MethodGet, "/api/v1/assessments/export?format=CSV&form_type=PLS-5", "")
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="PLS-5_`)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `.csv"`)
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestAssessmentHandler_Export_DefaultsToXLSX(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	mockSvc.On("Export", mock.Anything, domain.AssessmentFilter{}, service.ExportXLSX, mock.Anything).Return(nil)

	c, w := newContext(http.MethodGet, "/api/v1/assessments/export", "")
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="assessments_`)
}

func TestAssessmentHandler_Export_TooLarge(t *testing.T) {
	h, mockSvc := newAssessmentHandler()
	mockSvc.On("Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrExportTooLarge)

	c, w := newContext(http.MethodGet, "/api/v1/assessments/export", "")
	h.Export(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrAssessmentNotFound, http.StatusNotFound, "ASSESSMENT_NOT_FOUND"},
		{domain.ErrEmptyPayload, http.StatusBadRequest, "EMPTY_PAYLOAD"},
		{domain.ErrInvalidRecord, http.StatusBadRequest, "INVALID_RECORD"},
		{domain.ErrInvalidFormType, http.StatusBadRequest, "INVALID_FORM_TYPE"},
		{domain.ErrInvalidFilter, http.StatusBadRequest, "INVALID_FILTER"},
		{domain.ErrUnsupportedFormat, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{domain.ErrExportTooLarge, http.StatusRequestEntityTooLarge, "EXPORT_TOO_LARGE"},
		{context.DeadlineExceeded, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		status, code, _ := handler.MapDomainError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

func TestHealthHandler(t *testing.T) {
	ok := handler.NewHealthHandler(pinger{})
	down := handler.NewHealthHandler(pinger{err: io.ErrUnexpectedEOF})

	c, w := newContext(http.MethodGet, "/healthz", "")
	down.Liveness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodGet, "/readyz", "")
	ok.Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodGet, "/readyz", "")
	down.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.True(t, bytes.Contains(w.Body.Bytes(), []byte("unavailable")))
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }
