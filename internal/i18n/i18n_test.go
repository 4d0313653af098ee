// internal/i18n/i18n_test.go
package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	require.NoError(t, Initialize("", "en"))

	assert.Equal(t, "You already own this product", T("en", KeyPurchaseOwned))
	assert.Equal(t, "您已购买过该作品", T("zh_CN", KeyPurchaseOwned))
	assert.Equal(t, "Revenue split percentages cannot exceed 100%", T("en", KeySplitOverAllocated))
	assert.Equal(t, "Invalid title", T("en", KeyValidationInvalid, "title"))

	// unknown language falls back to the default
	assert.Equal(t, "Product deleted", T("fr", KeyProductDeleted))
	// unknown key is returned as is
	assert.Equal(t, "missing.key", T("en", "missing.key"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "zh_CN", Normalize("zh-CN"))
	assert.Equal(t, "zh_CN", Normalize("zh;q=0.9"))
	assert.Equal(t, "en", Normalize("en-US"))
	assert.Equal(t, "", Normalize("fr-FR"))
}
