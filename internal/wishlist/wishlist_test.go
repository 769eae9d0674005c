package wishlist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/catalog"
	id "storefront/pkg/domain"
)

type memStorage struct {
	items []Item
	saves int
}

func (m *memStorage) LoadWishlist() []Item { return append([]Item{}, m.items...) }

func (m *memStorage) SaveWishlist(items []Item) error {
	m.saves++
	m.items = append([]Item{}, items...)
	return nil
}

var dress = catalog.Product{
	ID: "linen-wrap-dress", Name: "Linen Wrap Dress", Slug: "linen-wrap-dress", Image: "/dress.jpg", Price: 32000, Stock: 0,
	Variants: []catalog.Variant{
		{Key: "sand-m", Price: 32000, Stock: 6},
		{Key: "olive-m", Price: 34000, Stock: 2, Image: "/olive.jpg"},
	},
}

var necklace = catalog.Product{ID: "pearl-drop", Name: "Pearl Drop", Slug: "pearl-drop", Price: 21000, Stock: 12}

func TestAdd_DuplicateIsNoop(t *testing.T) {
	storage := &memStorage{}
	w := New(storage)

	require.NoError(t, w.Add(necklace, nil))
	require.NoError(t, w.Add(necklace, nil))

	assert.Equal(t, 1, w.Len())
	assert.Equal(t, 1, storage.saves)
}

func TestAdd_CapturesStockFromVariantOrProduct(t *testing.T) {
	w := New(&memStorage{})

	require.NoError(t, w.Add(dress, &dress.Variants[1]))
	require.NoError(t, w.Add(necklace, nil))

	items := w.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Product.Stock)
	assert.Equal(t, catalog.Money(34000), items[0].Product.Price)
	assert.Equal(t, "/olive.jpg", items[0].Product.Image)
	assert.Equal(t, 12, items[1].Product.Stock)
	assert.True(t, items[1].VariantKey.IsNone())
}

func TestRemoveThenIsPresent(t *testing.T) {
	w := New(&memStorage{})
	require.NoError(t, w.Add(dress, nil))
	require.NoError(t, w.Add(dress, &dress.Variants[0]))

	require.NoError(t, w.Remove(dress.ID, id.NoVariant))

	assert.False(t, w.IsPresent(dress.ID, id.NoVariant))
	assert.True(t, w.IsPresent(dress.ID, id.Variant("sand-m")))

	require.NoError(t, w.Remove(dress.ID, id.Variant("sand-m")))
	assert.False(t, w.IsPresent(dress.ID, id.Variant("sand-m")))
	assert.Equal(t, 0, w.Len())
}

func TestIsPresent_SentinelMatchesNoVariant(t *testing.T) {
	w := New(&memStorage{})
	require.NoError(t, w.Add(necklace, nil))
	assert.True(t, w.IsPresent(necklace.ID, id.Variant(id.DefaultVariantSentinel)))
}

func TestClear_PersistsEmptyList(t *testing.T) {
	storage := &memStorage{}
	w := New(storage)
	require.NoError(t, w.Add(necklace, nil))

	require.NoError(t, w.Clear())

	assert.NotNil(t, storage.items)
	assert.Empty(t, storage.items)
}

func TestTakeThenRestore(t *testing.T) {
	storage := &memStorage{}
	w := New(storage)
	require.NoError(t, w.Add(necklace, nil))
	require.NoError(t, w.Add(dress, &dress.Variants[0]))

	taken, err := w.Take()
	require.NoError(t, err)
	assert.Len(t, taken, 2)
	assert.Zero(t, w.Len())
	assert.Empty(t, storage.items)

	require.NoError(t, w.Add(necklace, nil))
	require.NoError(t, w.Restore(taken))

	assert.Equal(t, 2, w.Len())
	assert.True(t, w.IsPresent(dress.ID, id.Variant("sand-m")))
	assert.Len(t, storage.items, 2)
}

func TestItemJSON_UsesDefaultSentinel(t *testing.T) {
	item := Item{Product: ProductSnapshot{ID: "pearl-drop"}}
	b, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"variantKey":"default"`)

	var back Item
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, item.Key(), back.Key())
}

func TestNew_DropsDuplicatesFromStorage(t *testing.T) {
	snap := ProductSnapshot{ID: "a"}
	w := New(&memStorage{items: []Item{
		{Product: snap},
		{Product: snap, VariantKey: id.Variant("default")},
		{Product: snap, VariantKey: id.Variant("x")},
		{Product: ProductSnapshot{}},
	}})
	assert.Equal(t, 2, w.Len())
}
