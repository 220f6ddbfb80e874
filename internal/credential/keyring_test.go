package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenKey_NormalizesURL(t *testing.T) {
	assert.Equal(t, "azdo-token:https://dev.azure.com/contoso", TokenKey("https://dev.azure.com/Contoso/"))
	assert.Equal(t, TokenKey("https://dev.azure.com/contoso"), TokenKey("https://dev.azure.com/contoso/"))
}
