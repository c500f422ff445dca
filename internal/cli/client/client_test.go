package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpella/frontdp/internal/cli/types"
)

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:8080", want: "http://localhost:8080"},
		{in: "localhost:8080", want: "http://localhost:8080"},
		{in: "https://dp.example.com/some/path", want: "https://dp.example.com"},
		{in: "http://", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeServerURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTotalBudgetBody(t *testing.T) {
	d := 0.01

	body := totalBudgetBody(types.PureDP, types.Budget{Epsilon: 5, Delta: &d})
	assert.Equal(t, map[string]float64{"epsilon": 5}, body)

	body = totalBudgetBody(types.ApproxDP, types.Budget{Epsilon: 5, Delta: &d})
	assert.Equal(t, map[string]float64{"epsilon": 5, "delta": 0.01}, body)

	// ApproxDP with no delta recorded still sends the field.
	body = totalBudgetBody(types.ApproxDP, types.Budget{Epsilon: 5})
	assert.Equal(t, map[string]float64{"epsilon": 5, "delta": 0}, body)
}

func TestNewAPIError(t *testing.T) {
	err := newAPIError(404, []byte(`{"detail":"Dataset not found"}`))
	assert.Equal(t, 404, err.Status)
	assert.Equal(t, "Dataset not found", err.Detail)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Dataset not found")

	// Non-JSON bodies fall back to the raw text.
	err = newAPIError(502, []byte("bad gateway"))
	assert.Equal(t, "bad gateway", err.Detail)

	err = newAPIError(500, nil)
	assert.Equal(t, "request failed with HTTP status 500", err.Error())
}

func TestIsDuplicateHandle(t *testing.T) {
	dup := newAPIError(400, []byte(`{"detail":"User handle already exists"}`))
	assert.True(t, IsDuplicateHandle(dup))

	other400 := newAPIError(400, []byte(`{"detail":"missing roles"}`))
	assert.False(t, IsDuplicateHandle(other400))

	wrongStatus := newAPIError(409, []byte(`{"detail":"User handle already exists"}`))
	assert.False(t, IsDuplicateHandle(wrongStatus))

	assert.False(t, IsDuplicateHandle(errors.New("network down")))
}
