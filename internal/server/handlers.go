package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// AdviceRequest is the body of POST /api/llm-advice.
type AdviceRequest struct {
	UserID         *string           `json:"userId" validate:"required"`
	AssessmentData *model.Assessment `json:"assessmentData" validate:"required"`
}

// AdviceResponse is the reply of POST /api/llm-advice.
type AdviceResponse struct {
	Advice    string `json:"advice"`
	Timestamp string `json:"timestamp"`
}

// SaveReportResponse acknowledges POST /api/save-user-report.
type SaveReportResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the body of every 4xx and 5xx reply.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// requestError is a rejected request body.
type requestError struct {
	status  int
	message string
	details []string
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	var req AdviceRequest
	if rerr := s.decode(w, r, &req); rerr != nil {
		writeError(w, rerr)
		return
	}

	log := zap.L().With(zap.String("user_id", *req.UserID))

	tbl, err := s.rules(r.Context())
	if err != nil {
		log.Error("server: rules unavailable", zap.Error(err))
		writeError(w, &requestError{status: http.StatusInternalServerError, message: "scoring rules unavailable"})
		return
	}

	report, err := s.advisor.Run(r.Context(), req.AssessmentData, tbl)
	if err != nil {
		log.Error("server: advice failed", zap.Error(err))
		writeError(w, &requestError{status: http.StatusInternalServerError, message: "advice generation failed"})
		return
	}

	writeJSON(w, http.StatusOK, AdviceResponse{
		Advice:    report,
		Timestamp: s.timestamp(),
	})
}

func (s *Server) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	var data *model.Assessment
	if rerr := s.decode(w, r, &data); rerr != nil {
		writeError(w, rerr)
		return
	}
	if data == nil {
		writeError(w, &requestError{
			status:  http.StatusUnprocessableEntity,
			message: "invalid request",
			details: []string{"assessment data is required"},
		})
		return
	}

	writeJSON(w, http.StatusOK, SaveReportResponse{
		Status:    "success",
		Message:   "Report saved successfully",
		Timestamp: s.timestamp(),
	})
}

func (s *Server) timestamp() string {
	return s.opts.Now().UTC().Format(time.RFC3339)
}

// decode reads and validates a JSON body. Malformed JSON is a 400; JSON of
// the wrong shape is a 422.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) *requestError {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &requestError{status: http.StatusRequestEntityTooLarge, message: "request body too large"}
		}
		return &requestError{status: http.StatusBadRequest, message: "invalid request body"}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var schemaErr *model.SchemaError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &schemaErr):
			return &requestError{status: http.StatusUnprocessableEntity, message: "invalid request", details: []string{schemaErr.Error()}}
		case errors.As(err, &typeErr):
			return &requestError{
				status:  http.StatusUnprocessableEntity,
				message: "invalid request",
				details: []string{fmt.Sprintf("field %q must be %s", typeErr.Field, typeErr.Type)},
			}
		default:
			return &requestError{status: http.StatusBadRequest, message: "malformed JSON"}
		}
	}

	if err := s.validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// dst is not a struct; nothing to check.
			return nil
		}
		return &requestError{status: http.StatusUnprocessableEntity, message: "invalid request", details: validationDetails(err)}
	}
	return nil
}

func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return out
}

func writeError(w http.ResponseWriter, rerr *requestError) {
	writeJSON(w, rerr.status, ErrorResponse{Error: rerr.message, Details: rerr.details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: write response", zap.Error(err))
	}
}
