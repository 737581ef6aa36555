// Package respond owns the two ends of the failure pipeline: classifying
// any error into one canonical shape, and serializing success and error
// envelopes with mode-dependent detail.
package respond

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"

	"todoapi/internal/domain"
)

// Classified is the single normalized failure record. Cause is kept for
// server-side logging only and never serialized in production.
type Classified struct {
	Status      int
	Code        string
	Message     string
	Operational bool
	Cause       error
}

// Classify is total: every error yields exactly one Classified. Checks run
// in a fixed order and the first match wins.
func Classify(err error) Classified {
	var appErr domain.AppError
	if errors.As(err, &appErr) {
		code := appErr.Code
		if code == "" {
			code = defaultCode(appErr.Status)
		}
		return Classified{Status: appErr.Status, Code: code, Message: appErr.Error(), Operational: true, Cause: err}
	}

	var idErr domain.InvalidIDError
	if errors.As(err, &idErr) {
		return Classified{Status: http.StatusBadRequest, Code: "InvalidIdentifier", Message: idErr.Error(), Operational: true, Cause: err}
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return Classified{Status: http.StatusBadRequest, Code: "DuplicateValue", Message: "Duplicate field value. Please use another value.", Operational: true, Cause: err}
	}
	var conflictErr domain.ConflictError
	if errors.As(err, &conflictErr) {
		return Classified{Status: http.StatusBadRequest, Code: "DuplicateValue", Message: conflictErr.Error(), Operational: true, Cause: err}
	}

	var valErr domain.ValidationError
	if errors.As(err, &valErr) {
		return Classified{Status: http.StatusBadRequest, Code: "ValidationFailed", Message: valErr.Error(), Operational: true, Cause: err}
	}

	var queryErr domain.QueryError
	if errors.As(err, &queryErr) {
		return Classified{Status: http.StatusBadRequest, Code: "InvalidQuery", Message: queryErr.Error(), Operational: true, Cause: err}
	}

	var credErr domain.CredentialError
	if errors.As(err, &credErr) {
		return Classified{Status: http.StatusUnauthorized, Code: credentialCode(credErr.Reason), Message: credErr.Error(), Operational: true, Cause: err}
	}

	var nfErr domain.NotFoundError
	if errors.As(err, &nfErr) {
		return Classified{Status: http.StatusNotFound, Code: "NotFound", Message: nfErr.Error(), Operational: true, Cause: err}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Classified{Status: http.StatusNotFound, Code: "NotFound", Message: "not found", Operational: true, Cause: err}
	}

	return Classified{Status: http.StatusInternalServerError, Code: "InternalError", Message: "Something went wrong", Operational: false, Cause: err}
}

// Emitter serializes outcomes. Dev mode discloses the underlying cause;
// production discloses at most the classified public message.
type Emitter struct {
	Dev bool
}

// Data writes the success envelope.
func (e Emitter) Data(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

// List writes the success envelope for listing endpoints, with a results
// count alongside the data.
func (e Emitter) List(c *gin.Context, results int, data gin.H) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": results, "data": data})
}

// Error classifies err and aborts the request with the error envelope.
func (e Emitter) Error(c *gin.Context, err error) {
	cls := Classify(err)

	reqID := c.Writer.Header().Get("X-Request-ID")
	if cls.Status >= http.StatusInternalServerError {
		log.Printf("[ERROR] request_id=%s %s %s status=%d cause=%v",
			reqID, c.Request.Method, c.Request.URL.Path, cls.Status, cls.Cause)
	} else {
		log.Printf("[FAIL] request_id=%s %s %s status=%d code=%s",
			reqID, c.Request.Method, c.Request.URL.Path, cls.Status, cls.Code)
	}

	payload := gin.H{
		"status":  statusWord(cls.Status),
		"code":    cls.Code,
		"message": cls.Message,
	}
	if reqID != "" {
		payload["request_id"] = reqID
	}
	if e.Dev {
		if cls.Cause != nil {
			payload["error"] = cls.Cause.Error()
		}
	} else if !cls.Operational {
		// Unknown fault: the cause stays in the server log.
		payload["message"] = "Something went wrong"
	}

	c.AbortWithStatusJSON(cls.Status, payload)
}

func statusWord(status int) string {
	if status >= http.StatusInternalServerError {
		return "error"
	}
	return "fail"
}

func credentialCode(reason domain.CredentialReason) string {
	switch reason {
	case domain.CredentialMissing:
		return "MissingCredential"
	case domain.CredentialExpired:
		return "CredentialExpired"
	case domain.PrincipalGone:
		return "PrincipalNotFound"
	default:
		return "InvalidCredential"
	}
}

func defaultCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BadRequest"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "NotFound"
	case http.StatusConflict:
		return "Conflict"
	default:
		return "Error"
	}
}
