package matching

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/pricematch/internal/domain"
)

func TestApplyOverride(t *testing.T) {
	rec := domain.CanonicalRecord{ID: 4, Name: "Неизвестный товар XYZ-999"}
	entry := seedCatalog()[5]

	out, err := ApplyOverride(&rec, &entry)
	require.NoError(t, err)
	assert.Equal(t, domain.KindManual, out.Kind)
	assert.Equal(t, 100, out.Confidence)
	assert.Equal(t, rec, out.Record)
	require.NotNil(t, out.Entry)
	assert.Equal(t, entry.ID, out.Entry.ID)

	// The outcome owns its copy of the entry.
	entry.Name = "changed"
	assert.NotEqual(t, "changed", out.Entry.Name)

	again, err := ApplyOverride(&rec, &seedCatalog()[5])
	require.NoError(t, err)
	assert.Equal(t, out, again, "override must be idempotent")
}

func TestApplyOverrideMissing(t *testing.T) {
	entry := seedCatalog()[0]
	rec := domain.CanonicalRecord{ID: 1, Name: "x"}

	_, err := ApplyOverride(nil, &entry)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = ApplyOverride(&rec, nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
