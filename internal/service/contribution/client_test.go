package contribution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/contribution"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
)

func sampleParams() contribution.Params {
	return contribution.Params{
		ContractSalary: decimal.NewFromInt(30000),
		EarnedSalary:   decimal.NewFromInt(15000),
		OvertimePay:    decimal.RequireFromString("312.5"),
		Frequency:      contribution.FrequencySemiMonthly,
		Cutoff:         cutoff.Second,
	}
}

func TestHTTPCalculator_Calculate_Success(t *testing.T) {
	var received contribution.Params
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, calculatePath, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"sss_employee": "750",
			"sss_employer": "1530",
			"philhealth_employee": "375",
			"philhealth_employer": "375",
			"pagibig_employee": "100",
			"pagibig_employer": "100",
			"withholding_tax": 412.5
		}`))
	}))
	defer server.Close()

	calc := NewHTTPCalculator(server.URL+"/", "secret", time.Second)

	// Act
	result, err := calc.Calculate(context.Background(), sampleParams())

	// Assert
	require.NoError(t, err)
	assert.True(t, received.EarnedSalary.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, cutoff.Second, received.Cutoff)
	assert.True(t, result.SSSEmployee.Equal(decimal.NewFromInt(750)))
	assert.True(t, result.WithholdingTax.Equal(decimal.RequireFromString("412.5")))
	assert.True(t, result.EmployeeTotal().Equal(decimal.RequireFromString("1637.5")))
}

func TestHTTPCalculator_Calculate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":{"message":"tax tables not loaded"}}`))
	}))
	defer server.Close()

	calc := NewHTTPCalculator(server.URL, "", time.Second)

	_, err := calc.Calculate(context.Background(), sampleParams())

	assert.ErrorIs(t, err, contribution.ErrCalculatorUnavailable)
	assert.Contains(t, err.Error(), "tax tables not loaded")
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPCalculator_Calculate_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	calc := NewHTTPCalculator(server.URL, "", time.Second)

	_, err := calc.Calculate(context.Background(), sampleParams())

	assert.ErrorIs(t, err, contribution.ErrCalculatorUnavailable)
}

func TestHTTPCalculator_Calculate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	calc := NewHTTPCalculator(url, "", time.Second)

	_, err := calc.Calculate(context.Background(), sampleParams())

	assert.ErrorIs(t, err, contribution.ErrCalculatorUnavailable)
}

func TestHTTPCalculator_Calculate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	calc := NewHTTPCalculator(server.URL, "", 20*time.Millisecond)

	_, err := calc.Calculate(context.Background(), sampleParams())

	assert.ErrorIs(t, err, contribution.ErrCalculatorUnavailable)
}
