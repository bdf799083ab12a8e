package validator

import (
	stdErrors "errors"
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-pipeline/errors"
)

type finalizeInput struct {
	RecordingID string `validate:"required,uuid"`
	Sequence    int    `validate:"min=0"`
}

func TestValidate(t *testing.T) {
	cv := New()

	if err := cv.Validate(&finalizeInput{RecordingID: "6f1f5bb6-3f4c-4d43-9a0e-2b7f7e2f9d10"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := cv.Validate(&finalizeInput{RecordingID: "nope", Sequence: -1})
	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_INVALID_ARGUMENT {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
	if !strings.Contains(appErr.Message, "RecordingID") || !strings.Contains(appErr.Message, "Sequence") {
		t.Fatalf("expected both fields named, got %q", appErr.Message)
	}
}
