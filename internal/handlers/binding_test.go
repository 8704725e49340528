package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTarget struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
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
			name:     "Nested structure",
			key:      "loan",
			body:     `{"loan": {"name": "Thandi", "amount": 500}}`,
			expected: bindTarget{Name: "Thandi", Amount: 500},
		},
		{
			name:     "Flat structure",
			key:      "loan",
			body:     `{"name": "Sipho", "amount": 300}`,
			expected: bindTarget{Name: "Sipho", Amount: 300},
		},
		{
			name:     "Missing key falls back to flat",
			key:      "loan",
			body:     `{"other": "value", "name": "Lindiwe", "amount": 750}`,
			expected: bindTarget{Name: "Lindiwe", Amount: 750},
		},
		{
			name:        "Invalid nested payload",
			key:         "payment",
			body:        `{"payment": {"amount": "not-a-number"}}`,
			expectError: true,
		},
		{
			name:        "Invalid JSON",
			key:         "loan",
			body:        `{"name": `,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target bindTarget
			err := BindNestedOrFlat(c, tt.key, &target)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, target)
		})
	}
}
