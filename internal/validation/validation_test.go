package validation

import (
	"errors"
	"testing"

	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Company string  `json:"company" validate:"min=1,max=100"`
	Status  string  `json:"status" validate:"jobstatus"`
	JobType *string `json:"jobType" validate:"omitnil,jobtype"`
	Email   string  `json:"email" validate:"omitempty,email"`
}

func TestStructValid(t *testing.T) {
	remote := "Remote"
	err := Struct(sample{Company: "Acme", Status: "In Review", JobType: &remote})
	assert.NoError(t, err)
}

func TestStructFieldErrors(t *testing.T) {
	bad := "Gig"
	err := Struct(sample{Company: "", Status: "Ghosted", JobType: &bad, Email: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	fields := apperr.FieldsOf(err)
	byName := map[string]string{}
	for _, f := range fields {
		byName[f.Field] = f.Message
	}

	assert.Equal(t, "Please provide company", byName["company"])
	assert.Contains(t, byName["status"], "Applied, In Review, Interview, Offer, Rejected")
	assert.Contains(t, byName["jobType"], "Full-time")
	assert.Equal(t, "Please provide a valid email", byName["email"])
	assert.Equal(t, "Please provide company", apperr.MessageOf(err))
}

func TestStructNilPointerSkipped(t *testing.T) {
	err := Struct(sample{Company: "Acme", Status: "Applied"})
	assert.NoError(t, err)
}

func TestTrim(t *testing.T) {
	a, b := "  Acme ", "\tEngineer\n"
	var missing *string
	Trim(&a, &b, missing)
	assert.Equal(t, "Acme", a)
	assert.Equal(t, "Engineer", b)
}
