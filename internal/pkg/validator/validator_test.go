package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "employee_id", Message: "employee_id is required"},
		{Field: "timezone", Message: "timezone is required"},
	}
	assert.Equal(t, "employee_id: employee_id is required; timezone: timezone is required", errs.Error())
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "location.lat", Message: "lat must be between -90 and 90"},
	}
	assert.Equal(t, map[string]string{
		"location.lat": "lat must be between -90 and 90",
	}, errs.ToMap())
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   \t\n"))
	assert.False(t, IsEmpty("emp-42"))
}

func TestIsInSlice(t *testing.T) {
	allowed := []string{"P", "HL", "A", "W"}
	assert.True(t, IsInSlice("HL", allowed))
	assert.False(t, IsInSlice("X", allowed))
	assert.False(t, IsInSlice("P", nil))
}
