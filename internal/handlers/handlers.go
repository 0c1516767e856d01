package handlers

import (
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"actionapi/internal/model"
)

// Predictor is the inference surface the HTTP layer depends on.
type Predictor interface {
	PredictFile(path string) (model.Prediction, error)
}

type Handler struct {
	predictor  Predictor
	scratchDir string
	maxUpload  int64
}

// NewHandler builds the request handlers. Uploads larger than maxUploadMB
// are rejected; accepted ones are written under scratchDir for the
// duration of the request.
func NewHandler(predictor Predictor, scratchDir string, maxUploadMB int64) *Handler {
	return &Handler{
		predictor:  predictor,
		scratchDir: scratchDir,
		maxUpload:  maxUploadMB << 20,
	}
}

// Register attaches all routes to the router.
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.POST("/predict", h.Predict)
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Action Recognition API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"/predict": "POST - Upload an image for action prediction",
			"/health":  "GET - Health check endpoint",
		},
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": h.predictor != nil,
	})
}

// Predict accepts one multipart image upload, writes it to a scratch path,
// runs inference and returns the top-1 action. The scratch file is removed
// no matter which branch the request takes.
func (h *Handler) Predict(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No file provided. Use 'file' as the form field name"})
		return
	}

	if file.Size > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("File too large (max %d MB)", h.maxUpload>>20)})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Invalid file type: %s. Please upload an image.", contentType)})
		return
	}

	log.Infof("Received file: %s (%s, %d bytes)", file.Filename, contentType, file.Size)

	scratchPath := filepath.Join(h.scratchDir, uuid.New().String()+".jpg")
	if err := c.SaveUploadedFile(file, scratchPath); err != nil {
		log.Errorf("Failed to save upload to %s: %v", scratchPath, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "prediction failed"})
		return
	}
	defer func() {
		if err := os.Remove(scratchPath); err != nil && !os.IsNotExist(err) {
			log.Warnf("Failed to delete scratch file %s: %v", scratchPath, err)
		}
	}()

	result, err := h.predictor.PredictFile(scratchPath)
	if err != nil {
		log.Errorf("Prediction error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "prediction failed"})
		return
	}

	log.Infof("Prediction successful: %s (%.4f)", result.Action, result.Confidence)

	c.JSON(http.StatusOK, gin.H{
		"action":     result.Action,
		"confidence": math.Round(result.Confidence*10000) / 10000,
	})
}
