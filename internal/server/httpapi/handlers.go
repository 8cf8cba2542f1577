package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/server/services"
)

type credentialsRequest struct {
	Files []services.FileSpec `json:"files"`
}

type renewRequest struct {
	Key string `json:"key"`
}

type confirmRequest struct {
	Files []services.Claim `json:"files"`
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleIssueCredentials(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	batch, err := s.service.IssueCredentials(c.Request.Context(), c.Param("id"), req.Files)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) handleRenewCredential(c *gin.Context) {
	var req renewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cred, err := s.service.RenewCredential(c.Request.Context(), c.Param("id"), req.Key)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cred)
}

func (s *Server) handleConfirm(c *gin.Context) {
	batchToken := c.GetHeader(common.BatchTokenHeaderName)
	if batchToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing batch token"})
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	verdict, err := s.service.ConfirmBatch(c.Request.Context(), c.Param("id"), batchToken, req.Files)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleManifest(c *gin.Context) {
	entries, err := s.service.Manifest(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": entries})
}

// writeError maps domain errors to HTTP statuses. Policy violations get 422
// so clients can tell "your batch is invalid" from transport-level 4xx.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, common.ErrFileTooLarge),
		errors.Is(err, common.ErrEmptyFilename),
		errors.Is(err, common.ErrSizeNotDeclared):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrEmptyBatch):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidBatchToken),
		errors.Is(err, common.ErrBatchTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrCredentialIssue):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.log.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
