package testutil

import (
	"errors"
	"testing"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/require"
)

// RequireDomainCode fails the test unless err is a DomainError carrying code.
func RequireDomainCode(t *testing.T, err error, code string) *shared.DomainError {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	require.Equal(t, code, domainErr.Code, "unexpected error: %v", err)
	return domainErr
}
