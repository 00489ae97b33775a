package contribution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/contribution"
)

const calculatePath = "/v1/contributions/calculate"

// HTTPCalculator calls the external statutory contribution service.
type HTTPCalculator struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Calculate implements contribution.Calculator. Every transport, status or decoding failure
// wraps ErrCalculatorUnavailable so callers can fall back.
func (c *HTTPCalculator) Calculate(ctx context.Context, params contribution.Params) (contribution.Result, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return contribution.Result{}, fmt.Errorf("failed to encode contribution params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+calculatePath, bytes.NewReader(body))
	if err != nil {
		return contribution.Result{}, fmt.Errorf("%w: %w", contribution.ErrCalculatorUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return contribution.Result{}, fmt.Errorf("%w: %w", contribution.ErrCalculatorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &eb) == nil && eb.Error.Message != "" {
			msg = eb.Error.Message
		}
		return contribution.Result{}, fmt.Errorf("%w: status %d: %s", contribution.ErrCalculatorUnavailable, resp.StatusCode, msg)
	}

	var result contribution.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return contribution.Result{}, fmt.Errorf("%w: invalid response: %w", contribution.ErrCalculatorUnavailable, err)
	}

	return result, nil
}

func NewHTTPCalculator(baseURL string, apiKey string, timeout time.Duration) contribution.Calculator {
	return &HTTPCalculator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}
