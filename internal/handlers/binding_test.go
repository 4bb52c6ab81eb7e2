package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTarget struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		expected    bindTarget
		expectError bool
	}{
		{
			name:     "Nested Structure",
			key:      "payment",
			body:     `{"payment": {"name": "abono", "amount": 250}}`,
			expected: bindTarget{Name: "abono", Amount: 250},
		},
		{
			name:     "Flat Structure",
			key:      "payment",
			body:     `{"name": "abono", "amount": 250}`,
			expected: bindTarget{Name: "abono", Amount: 250},
		},
		{
			name:     "Missing Key Falls Back to Flat",
			key:      "payment",
			body:     `{"other": "value", "name": "pago", "amount": 100}`,
			expected: bindTarget{Name: "pago", Amount: 100},
		},
		{
			name:        "Invalid Field Type",
			key:         "payment",
			body:        `{"name": "pago", "amount": "invalid"}`,
			expectError: true,
		},
		{
			name:        "Nested but Invalid Content",
			key:         "payment",
			body:        `{"payment": {"name": "pago", "amount": "invalid"}}`,
			expectError: true,
		},
		{
			name:        "Nested Key Present but Invalid Type",
			key:         "payment",
			body:        `{"payment": "some string"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result bindTarget
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
