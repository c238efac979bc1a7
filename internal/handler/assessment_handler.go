package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"formscan/internal/domain"
	"formscan/internal/export"
	"formscan/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AssessmentHandler handles assessment endpoints.
type AssessmentHandler struct {
	assessmentService service.AssessmentService
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentService service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

// ingestRequest is the body of the ingest and preview endpoints. Payload is
// the extraction JSON, either inline or as a string.
type ingestRequest struct {
	Payload      json.RawMessage `json:"payload"`
	SourceText   string          `json:"source_text"`
	DocumentType string          `json:"document_type"`
}

func bindIngest(c *gin.Context) (*service.IngestInput, bool) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body exceeds the maximum allowed size")
			return nil, false
		}
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be JSON with payload and/or source_text")
		return nil, false
	}
	return &service.IngestInput{
		Payload:      req.Payload,
		SourceText:   req.SourceText,
		DocumentType: req.DocumentType,
	}, true
}

// Create handles POST /api/v1/assessments
func (h *AssessmentHandler) Create(c *gin.Context) {
	input, ok := bindIngest(c)
	if !ok {
		return
	}
	a, err := h.assessmentService.Ingest(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, a)
}

// Preview handles POST /api/v1/assessments/preview
func (h *AssessmentHandler) Preview(c *gin.Context) {
	input, ok := bindIngest(c)
	if !ok {
		return
	}
	res, err := h.assessmentService.Preview(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, res)
}

// Classify handles POST /api/v1/classify
func (h *AssessmentHandler) Classify(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "text is required")
		return
	}
	RespondOK(c, h.assessmentService.Classify(c.Request.Context(), req.Text))
}

// GetByID handles GET /api/v1/assessments/:id
func (h *AssessmentHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.assessmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, a)
}

func listFilter(c *gin.Context) domain.AssessmentFilter {
	return domain.AssessmentFilter{
		FormType:         c.Query("form_type"),
		ValidationStatus: domain.ValidationStatus(strings.ToLower(c.Query("validation_status"))),
	}
}

// List handles GET /api/v1/assessments
func (h *AssessmentHandler) List(c *gin.Context) {
	filter := listFilter(c)
	filter.Offset, filter.Limit = parsePagination(c)

	items, total, err := h.assessmentService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, items, PagMeta{Total: total, Offset: filter.Offset, Limit: filter.Limit})
}

// Update handles PUT /api/v1/assessments/:id. The body is a complete record.
func (h *AssessmentHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Record json.RawMessage `json:"record" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "record is required")
		return
	}

	a, err := h.assessmentService.UpdateRecord(c.Request.Context(), &service.UpdateRecordInput{ID: id, Record: req.Record})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, a)
}

// Delete handles DELETE /api/v1/assessments/:id
func (h *AssessmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.assessmentService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "assessment deleted"})
}

// Export handles GET /api/v1/assessments/export?format=xlsx|csv
func (h *AssessmentHandler) Export(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(service.ExportXLSX))))

	var buf bytes.Buffer
	if err := h.assessmentService.Export(c.Request.Context(), listFilter(c), format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	name := c.Query("form_type")
	filename := export.BuildFilename(name, string(format), time.Now())
	contentType := xlsxContentType
	if format == service.ExportCSV {
		contentType = "text/csv; charset=utf-8"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
