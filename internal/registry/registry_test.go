package registry

import (
	"testing"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certa/pkg/appapi"
)

type stubFeature struct {
	meta appapi.FeatureMetadata
}

func (s stubFeature) Start(*tview.Application) tview.Primitive { return tview.NewBox() }
func (s stubFeature) GetMetadata() appapi.FeatureMetadata    { return s.meta }

func TestRegisterKeepsOrderAndReplaces(t *testing.T) {
	r := New()
	r.Register(stubFeature{appapi.FeatureMetadata{Name: "certifications", Version: "1.0.0"}})
	r.Register(stubFeature{appapi.FeatureMetadata{Name: "patients"}})
	r.Register(stubFeature{appapi.FeatureMetadata{Name: "certifications", Version: "1.1.0"}})

	assert.Equal(t, []string{"certifications", "patients"}, r.Names())

	meta, ok := r.Metadata("certifications")
	require.True(t, ok)
	assert.Equal(t, "1.1.0", meta.Version)

	_, ok = r.Get("billing")
	assert.False(t, ok)
	assert.Len(t, r.All(), 2)
}
