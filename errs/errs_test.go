package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandClassification(t *testing.T) {
	assert.True(t, IsBandA(UnknownTable("t")))
	assert.True(t, IsBandB(UniqueViolation("idx", "1")))
	assert.True(t, IsBandC(IOError("save", errors.New("disk full"))))
}

func TestErrorsAsUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("executing statement: %w", UnknownColumn("x"))
	var e *Error
	if !errors.As(wrapped, &e) {
		t.Fatal("expected errors.As to find *errs.Error")
	}
	assert.Equal(t, KindUnknownColumn, e.Kind)
}

func TestIOErrorUnwrapsToUnderlying(t *testing.T) {
	underlying := errors.New("permission denied")
	err := IOError("rename", underlying)
	assert.True(t, errors.Is(err, underlying))
}

func TestMessageFormatting(t *testing.T) {
	err := RefusedDrop("dept", "emp")
	assert.Contains(t, err.Error(), "RefusedDrop")
	assert.Contains(t, err.Error(), "dept")
	assert.Contains(t, err.Error(), "emp")
}
