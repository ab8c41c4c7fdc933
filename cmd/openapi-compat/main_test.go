package main

import (
	"testing"

	"wanderlog/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
swagger: "2.0"
paths:
  /trips:
    get:
      responses:
        "200": {description: OK}
    post:
      responses:
        "201": {description: Created}
        "400": {description: Bad Request}
  /legacy:
    get:
      responses:
        "200": {description: OK}
    parameters: []
`

func TestCompare(t *testing.T) {
	base, err := parseContract([]byte(baseYAML))
	require.NoError(t, err)
	assert.NotContains(t, base["/legacy"], "parameters")

	revision, err := parseContract([]byte(`
paths:
  /trips:
    post:
      responses:
        "201": {description: Created}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"removed operation: GET /trips",
		"removed path: /legacy",
		"removed response code: POST /trips -> 400",
	}, compare(base, revision))
	assert.Empty(t, compare(base, base))
}

func TestParseContract_MissingPaths(t *testing.T) {
	_, err := parseContract([]byte(`swagger: "2.0"`))
	assert.ErrorContains(t, err, "missing top-level paths")
}

func TestBuiltInDocumentParses(t *testing.T) {
	built, err := parseContract([]byte(docs.SwaggerInfo.ReadDoc()))
	require.NoError(t, err)
	require.Contains(t, built, "/trips")
	assert.Contains(t, built["/trips"]["post"], "201")
	assert.Contains(t, built["/favorites/{placeId}"]["delete"], "204")
}
