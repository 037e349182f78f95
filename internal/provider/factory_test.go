package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vasudevan-kross/calling-agent-app/internal/config"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
)

func TestFactoryActive(t *testing.T) {
	f := NewFactory(&config.AppConfig{ActiveVoiceProvider: "vapi"})

	p, err := f.Active()
	require.NoError(t, err)
	require.Equal(t, ProviderVapi, p.Name())
	require.Equal(t, "vapi", f.ActiveName())
}

func TestFactoryActive_CaseInsensitive(t *testing.T) {
	f := NewFactory(&config.AppConfig{ActiveVoiceProvider: "RETELL"})

	p, err := f.Active()
	require.NoError(t, err)
	require.Equal(t, ProviderRetell, p.Name())
}

func TestFactoryByName(t *testing.T) {
	f := NewFactory(&config.AppConfig{ActiveVoiceProvider: "vapi"})

	// Resolution by name works regardless of the active selection
	p, err := f.ByName("retell")
	require.NoError(t, err)
	require.Equal(t, ProviderRetell, p.Name())
}

func TestFactoryByName_Unknown(t *testing.T) {
	f := NewFactory(&config.AppConfig{ActiveVoiceProvider: "vapi"})

	_, err := f.ByName("twilio")
	require.Error(t, err)

	var configErr *domain.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, "twilio", configErr.Provider)
	require.Equal(t, []string{"retell", "vapi"}, configErr.Supported)
}

func TestFactoryActive_Unset(t *testing.T) {
	f := NewFactory(&config.AppConfig{})

	_, err := f.Active()
	require.Error(t, err)

	var configErr *domain.ConfigurationError
	require.True(t, errors.As(err, &configErr))
}
