package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasenjit/swagger-hub/internal/config"
)

func TestValidateHub(t *testing.T) {
	root, err := config.Parse([]byte(`
Swagger:
  Title: Platform
  Version: 2.0.0
  Documents:
    - BaseAddressUrl: https://orders.internal/
      DocumentUrl: swagger/v1/swagger.json
      UrlSuffix: orders
    - BaseAddressUrl: https://users.internal/
      IsDirectCall: "true"
`))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, validateHub(context.Background(), &out, config.Default(), root, false))

	assert.Contains(t, out.String(), "Platform 2.0.0")
	assert.Contains(t, out.String(), "https://orders.internal/swagger/v1/swagger.json")
	assert.Contains(t, out.String(), "/orders")
	assert.Contains(t, out.String(), "direct https://users.internal/")
}

func TestValidateHub_InvalidConfiguration(t *testing.T) {
	root, err := config.Parse([]byte(`
Swagger:
  Documents:
    - BaseAddressUrl: https://orders.internal/
    - DocumentUrl: swagger.json
`))
	require.NoError(t, err)

	var out bytes.Buffer
	err = validateHub(context.Background(), &out, config.Default(), root, false)
	require.ErrorIs(t, err, config.ErrMissingValue)
	assert.Contains(t, err.Error(), "Swagger:Documents:1:BaseAddressUrl")
	assert.Empty(t, out.String())
}

func TestValidateHub_Fetch(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"openapi":"3.0.3","info":{"title":"Users","version":"1"},`+
			`"paths":{"/users":{"get":{"responses":{"200":{"description":"ok"}}}}}}`)
	}))
	defer remote.Close()

	root, err := config.Parse([]byte(fmt.Sprintf(`
Swagger:
  Documents:
    - BaseAddressUrl: %s/
      UrlSuffix: users
`, remote.URL)))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, validateHub(context.Background(), &out, config.Default(), root, true))
	assert.Contains(t, out.String(), "Merged document is valid: 1 paths")
}

func TestDefaultConfigYAML(t *testing.T) {
	data, err := defaultConfigYAML("Docs")
	require.NoError(t, err)

	root, err := config.Parse(data)
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigType("yaml")
	config.SetDefaults(v)
	require.NoError(t, v.ReadConfig(bytes.NewReader(data)))

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Docs", cfg.Hub.Section)
	assert.Equal(t, "file", cfg.Storage.Type)

	var out bytes.Buffer
	require.NoError(t, validateHub(context.Background(), &out, cfg, root, false))
	assert.Contains(t, out.String(), "API Hub 1.0.0")
	assert.Contains(t, out.String(), "http://localhost:5001/swagger/v1/swagger.json")
	assert.Contains(t, out.String(), "direct http://localhost:5002/")
}

func TestHelpDescribesHubSectionSource(t *testing.T) {
	for _, cmd := range []*cobra.Command{serveCmd, validateCmd} {
		assert.Contains(t, cmd.Long, "SWAGGERHUB_*", cmd.Name())
		assert.Contains(t, cmd.Long, "lower-cased", cmd.Name())
	}
}
