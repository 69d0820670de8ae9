package service

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	require.Equal(t, fiber.StatusBadRequest, HTTPStatus(Validationf("bad")))
	require.Equal(t, fiber.StatusNotFound, HTTPStatus(NotFoundf("gone")))
	require.Equal(t, fiber.StatusConflict, HTTPStatus(Conflictf("again")))
	require.Equal(t, fiber.StatusBadGateway, HTTPStatus(GatewayErr(errors.New("down"), "check failed")))
	require.Equal(t, fiber.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestKindOfWrappedError(t *testing.T) {
	kind, ok := KindOf(Conflictf("already settled"))
	require.True(t, ok)
	require.Equal(t, KindConflict, kind)

	_, ok = KindOf(errors.New("plain"))
	require.False(t, ok)
}

func TestGatewayErrUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := GatewayErr(cause, "status check failed for %s", "PAY-1")
	require.ErrorIs(t, err, cause)

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	require.True(t, svcErr.Retryable())
}
