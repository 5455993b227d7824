package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

func TestSearchStudentsRejectsShortQuery(t *testing.T) {
	svc := NewStudentService(nil, zerolog.Nop())

	for _, query := range []string{"", "a", " a ", "\t"} {
		_, err := svc.SearchStudents(context.Background(), query)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest, "query %q", query)
	}
}
