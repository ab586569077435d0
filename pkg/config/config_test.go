package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Equal(t, EnvDev, c.Env)
	assert.Equal(t, 8888, c.Server.Port)
	assert.Equal(t, 3, c.Billing.MaxFailedPayments)
	assert.Equal(t, 30, c.Payments.TimeoutSeconds)
	assert.NotEmpty(t, c.Database.DSN)
}
