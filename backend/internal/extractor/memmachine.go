package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	apperrors "fitgraph/backend/pkg/errors"
	"fitgraph/backend/pkg/logger"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a MemMachine reply is read
const maxResponseBytes = 1 << 20

// MemMachineExtractor calls the MemMachine insight service
type MemMachineExtractor struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

type memMachineRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// NewMemMachineExtractor creates a client bounded by timeout
func NewMemMachineExtractor(baseURL, apiKey string, timeout time.Duration) *MemMachineExtractor {
	return &MemMachineExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Get(),
	}
}

// Extract posts the feedback to {base}/add and decodes the insight
func (c *MemMachineExtractor) Extract(ctx context.Context, userID, text string) (*Insight, error) {
	jsonData, err := json.Marshal(memMachineRequest{UserID: userID, Text: text})
	if err != nil {
		return nil, apperrors.NewExtractionFailed(SourceMemMachine, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/add", bytes.NewReader(jsonData))
	if err != nil {
		return nil, apperrors.NewExtractionFailed(SourceMemMachine, "build request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExtractionFailed(SourceMemMachine, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.NewExtractionFailed(SourceMemMachine, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewExtractionFailed(SourceMemMachine,
			fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}

	var insight Insight
	if err := json.Unmarshal(body, &insight); err != nil {
		return nil, apperrors.NewExtractionFailed(SourceMemMachine, "malformed response", err)
	}
	if err := insight.validate(SourceMemMachine); err != nil {
		return nil, err
	}
	insight.Source = SourceMemMachine

	c.logger.Debug("MemMachine insight received",
		zap.String("user_id", userID),
		zap.String("request_id", requestID),
		zap.String("constraint", insight.Constraint),
		zap.Float64("confidence", insight.Confidence),
		zap.Duration("latency", time.Since(start)),
	)
	return &insight, nil
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
