package productkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromURL_Amazon(t *testing.T) {
	tests := []struct {
		name string
		url  string
		id   string
	}{
		{"dp path", "https://www.amazon.in/dp/B0ABCD1234", "B0ABCD1234"},
		{"dp with slug", "https://www.amazon.in/Sony-WH-1000XM5/dp/B09XS7JWHH/", "B09XS7JWHH"},
		{"gp product path", "https://amazon.in/gp/product/B0ABCD1234", "B0ABCD1234"},
		{"mobile path", "https://www.amazon.in/gp/aw/d/B0ABCD1234", "B0ABCD1234"},
		{"tracking params ignored", "https://www.amazon.in/dp/B0ABCD1234?tag=aff-21&ref_=x", "B0ABCD1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := FromURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, "amazon", key.Platform)
			assert.Equal(t, tt.id, key.ID)
			assert.True(t, key.Clean)
		})
	}
}

func TestFromURL_Flipkart(t *testing.T) {
	key, err := FromURL("https://www.flipkart.com/sony-wh-1000xm5/p/itm6c3a2f7f8d5c1?pid=ACCG3YZVHZZGZFPH")
	require.NoError(t, err)
	assert.Equal(t, "flipkart", key.Platform)
	assert.Equal(t, "itm6c3a2f7f8d5c1", key.ID)
	assert.True(t, key.Clean)

	key, err = FromURL("https://www.flipkart.com/product?pid=accg3yzvhzzgzfph")
	require.NoError(t, err)
	assert.Equal(t, "ACCG3YZVHZZGZFPH", key.ID)
	assert.True(t, key.Clean)
}

func TestFromURL_Myntra(t *testing.T) {
	key, err := FromURL("https://www.myntra.com/tshirts/roadster/roadster-men-navy/1700944/buy")
	require.NoError(t, err)
	assert.Equal(t, "myntra", key.Platform)
	assert.Equal(t, "1700944", key.ID)
	assert.True(t, key.Clean)
}

func TestFromURL_FallbackStripsTracking(t *testing.T) {
	a, err := FromURL("https://www.example.com/product/widget?utm_source=tg&utm_campaign=deals")
	require.NoError(t, err)
	b, err := FromURL("https://example.com/product/widget")
	require.NoError(t, err)

	assert.False(t, a.Clean)
	assert.Equal(t, b.String(), a.String())
}

func TestFromURL_FallbackKeepsMeaningfulParams(t *testing.T) {
	a, err := FromURL("https://example.com/search?q=headphones")
	require.NoError(t, err)
	b, err := FromURL("https://example.com/search?q=speakers")
	require.NoError(t, err)

	assert.NotEqual(t, a.String(), b.String())
}

func TestFromURL_Errors(t *testing.T) {
	_, err := FromURL("")
	assert.Error(t, err)

	_, err = FromURL("   ")
	assert.Error(t, err)
}

func TestForDeal_FallsBackToStoreAndTitle(t *testing.T) {
	key := ForDeal("Amazon.in", "", "Sony WH-1000XM5 Headphones")
	assert.Equal(t, "amazon", key.Platform)
	assert.Equal(t, "sonywh1000xm5headphones", key.ID)
	assert.False(t, key.Clean)
}

func TestForDeal_SameProductDifferentTrackingLinks(t *testing.T) {
	a := ForDeal("amazon", "https://www.amazon.in/dp/B09XS7JWHH?tag=aff1-21", "Sony XM5")
	b := ForDeal("amazon", "https://amazon.in/Sony/dp/B09XS7JWHH?tag=aff2-21", "Sony WH-1000XM5")

	assert.Equal(t, a.String(), b.String())
	assert.True(t, a.Clean)
}
