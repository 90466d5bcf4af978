package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskmanagement/internal/models"
)

var fixedNow = time.Date(2026, 3, 10, 12, 30, 45, 0, time.UTC)

func newTestValidator() *Validator {
	return newWithClock(func() time.Time { return fixedNow })
}

func dt(t time.Time) *models.DateTime {
	d := models.DateTime(t)
	return &d
}

func fields(err error) []string {
	var ve *Errors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]string, len(ve.Violations))
	for i, v := range ve.Violations {
		out[i] = v.Field
	}
	return out
}

func TestValidateTaskCreateRequest(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name       string
		req        models.TaskCreateRequest
		wantFields []string
	}{
		{
			name: "valid",
			req: models.TaskCreateRequest{
				Name:          "Finish report",
				ScheduledDate: dt(fixedNow.Add(24 * time.Hour)),
				Priority:      models.PriorityUsual,
			},
		},
		{
			name: "same minute counts as present",
			req: models.TaskCreateRequest{
				Name:          "Now",
				ScheduledDate: dt(fixedNow.Truncate(time.Minute)),
				Priority:      models.PriorityUrgent,
			},
		},
		{
			name: "name too short",
			req: models.TaskCreateRequest{
				Name:          "A",
				ScheduledDate: dt(fixedNow.Add(time.Hour)),
				Priority:      models.PriorityUsual,
			},
			wantFields: []string{"name"},
		},
		{
			name: "name too long",
			req: models.TaskCreateRequest{
				Name:          strings.Repeat("x", 56),
				ScheduledDate: dt(fixedNow.Add(time.Hour)),
				Priority:      models.PriorityUsual,
			},
			wantFields: []string{"name"},
		},
		{
			name: "past date and unknown priority",
			req: models.TaskCreateRequest{
				Name:          "Late",
				ScheduledDate: dt(fixedNow.Add(-48 * time.Hour)),
				Priority:      "LOW",
			},
			wantFields: []string{"scheduledDate", "priority"},
		},
		{
			name:       "everything missing",
			req:        models.TaskCreateRequest{},
			wantFields: []string{"name", "scheduledDate", "priority"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationErrors(err))
			assert.ElementsMatch(t, tt.wantFields, fields(err))
		})
	}
}

func TestValidateTaskUpdateRequest(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.Struct(models.TaskUpdateRequest{}), "empty partial update is valid")

	short := "x"
	bad := models.TaskPriority("SOMEDAY")
	err := v.Struct(models.TaskUpdateRequest{Name: &short, Priority: &bad, ScheduledDate: dt(fixedNow.Add(-time.Hour))})
	assert.ElementsMatch(t, []string{"name", "priority", "scheduledDate"}, fields(err))
}

func TestValidateTagRequests(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.Struct(models.TagCreateRequest{Name: "#backend"}))
	// the # prefix is a service rule, not a boundary rule
	assert.NoError(t, v.Struct(models.TagCreateRequest{Name: "backend"}))

	err := v.Struct(models.TagCreateRequest{Name: "#"})
	require.Error(t, err)
	var ve *Errors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Violations[0].Field)
	assert.Contains(t, ve.Violations[0].Message, "at least 2")

	long := "#" + strings.Repeat("a", 50)
	assert.Equal(t, []string{"name"}, fields(v.Struct(models.TagUpdateRequest{Name: &long})))
	assert.NoError(t, v.Struct(models.TagUpdateRequest{}))
}

func TestErrors_Error(t *testing.T) {
	e := &Errors{}
	assert.False(t, e.HasErrors())
	assert.Equal(t, "validation error", e.Error())

	e.Add("name", "name is required")
	e.Add("priority", "priority is required")
	assert.True(t, e.HasErrors())
	assert.Equal(t, "validation failed: name: name is required; priority: priority is required", e.Error())
}

func TestMustRegister(t *testing.T) {
	assert.NotPanics(t, func() { New() })

	validate := validator.New()
	assert.Panics(t, func() { mustRegister(validate, "", validPriority) })
	assert.Panics(t, func() { mustRegister(validate, "priority", nil) })
}
