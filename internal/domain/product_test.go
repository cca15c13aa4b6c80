package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("Cafe de olla", "Ground coffee with cinnamon", mustMoney(t, "100", "MXN"), NewCategoryID())
	require.NoError(t, err)
	return p
}

func mustImage(t *testing.T, url string) Image {
	t.Helper()
	img, err := NewImage(url, "product picture", 0)
	require.NoError(t, err)
	return img
}

func TestNewProductValidation(t *testing.T) {
	categoryID := NewCategoryID()
	price := mustMoney(t, "100", "MXN")

	tests := []struct {
		name     string
		prodName string
		desc     string
		price    Money
		wantKind ErrorKind
	}{
		{name: "valid", prodName: "Tamal oaxaqueño", desc: "Banana leaf tamal", price: price},
		{name: "name too short", prodName: "ab", desc: "ok", price: price, wantKind: KindValidation},
		{name: "name too long", prodName: strings.Repeat("x", 101), desc: "ok", price: price, wantKind: KindValidation},
		{name: "description too long", prodName: "valid name", desc: strings.Repeat("d", 501), price: price, wantKind: KindValidation},
		{name: "zero price", prodName: "valid name", desc: "ok", price: ZeroMoney("MXN"), wantKind: KindBusinessRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.prodName, tt.desc, tt.price, categoryID)
			if tt.wantKind != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.False(t, p.Available(), "products must always start unavailable")
		})
	}
}

func TestProductChangePriceCap(t *testing.T) {
	tests := []struct {
		name     string
		newPrice string
		wantKind ErrorKind
	}{
		{name: "increase to exactly 150% succeeds", newPrice: "150"},
		{name: "one cent above the cap fails", newPrice: "150.01", wantKind: KindBusinessRule},
		{name: "well above the cap fails", newPrice: "151", wantKind: KindBusinessRule},
		{name: "any decrease succeeds", newPrice: "0.01"},
		{name: "zero fails", newPrice: "0", wantKind: KindBusinessRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProduct(t)
			err := p.ChangePrice(mustMoney(t, tt.newPrice, "MXN"))
			if tt.wantKind != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				assert.True(t, p.Price().Equals(mustMoney(t, "100", "MXN")), "failed change must not mutate the price")
				return
			}
			require.NoError(t, err)
			assert.True(t, p.Price().Equals(mustMoney(t, tt.newPrice, "MXN")))
		})
	}
}

func TestProductChangePriceRejectsCurrencySwitch(t *testing.T) {
	p := newTestProduct(t)
	err := p.ChangePrice(mustMoney(t, "90", "USD"))
	assert.Equal(t, KindBusinessRule, KindOf(err))
}

func TestProductActivation(t *testing.T) {
	p := newTestProduct(t)

	err := p.Activate()
	assert.Equal(t, KindBusinessRule, KindOf(err), "activation without images must fail")

	require.NoError(t, p.AddImage(mustImage(t, "https://cdn.example.com/p/1.jpg")))
	require.NoError(t, p.Activate())
	assert.True(t, p.Available())

	err = p.Activate()
	assert.Equal(t, KindIllegalState, KindOf(err), "double activation must fail")

	require.NoError(t, p.Deactivate())
	assert.False(t, p.Available())

	err = p.Deactivate()
	assert.Equal(t, KindIllegalState, KindOf(err), "double deactivation must fail")
}

func TestProductImageLimits(t *testing.T) {
	p := newTestProduct(t)

	for i := 0; i < MaxProductImages; i++ {
		require.NoError(t, p.AddImage(mustImage(t, "https://cdn.example.com/p/img.jpg")))
	}

	err := p.AddImage(mustImage(t, "https://cdn.example.com/p/extra.jpg"))
	assert.Equal(t, KindBusinessRule, KindOf(err))
	assert.Len(t, p.Images(), MaxProductImages, "failed add must not mutate the gallery")

	images := p.Images()
	for _, img := range images[1:] {
		require.NoError(t, p.RemoveImage(img.ID()))
	}

	err = p.RemoveImage(images[0].ID())
	assert.Equal(t, KindBusinessRule, KindOf(err), "last image cannot be removed")
	assert.Len(t, p.Images(), 1)

	err = p.RemoveImage(uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestProductImagesSnapshotIsACopy(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.AddImage(mustImage(t, "https://cdn.example.com/p/1.jpg")))

	snapshot := p.Images()
	snapshot[0] = Image{}

	assert.Equal(t, "https://cdn.example.com/p/1.jpg", p.Images()[0].URL())
}

func TestNewImageValidation(t *testing.T) {
	_, err := NewImage("ftp://cdn.example.com/1.jpg", "alt", 0)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = NewImage("https://cdn.example.com/1.jpg", "  ", 0)
	assert.Equal(t, KindValidation, KindOf(err))

	img, err := NewImage("http://cdn.example.com/1.jpg", "front view", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Order())
}

func TestReconstituteProductRejectsInvalidState(t *testing.T) {
	p := newTestProduct(t)

	_, err := ReconstituteProduct(p.ID(), p.Name(), p.Description(), p.Price(), p.CategoryID(), nil, true, p.CreatedAt(), p.UpdatedAt())
	assert.Equal(t, KindBusinessRule, KindOf(err), "available product without images must not be reconstructable")

	restored, err := ReconstituteProduct(p.ID(), p.Name(), p.Description(), p.Price(), p.CategoryID(), nil, false, p.CreatedAt(), p.UpdatedAt())
	require.NoError(t, err)
	assert.Equal(t, p.ID(), restored.ID())
}

func TestProperty_PriceChangeSucceedsIffWithinCap(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ChangePrice succeeds iff 0 < new <= old * 1.5", prop.ForAll(
		func(oldCents, newCents int64) bool {
			oldPrice, err := NewMoney(decimal.New(oldCents, -2), "MXN")
			if err != nil || !oldPrice.IsPositive() {
				return true
			}
			p, err := NewProduct("Property product", "generated", oldPrice, NewCategoryID())
			if err != nil {
				t.Logf("FAIL: could not build product: %v", err)
				return false
			}
			newPrice, err := NewMoney(decimal.New(newCents, -2), "MXN")
			if err != nil {
				return true
			}

			ceiling := oldPrice.Multiply(decimal.NewFromFloat(1.5))
			cmp, _ := newPrice.Cmp(ceiling)
			shouldSucceed := newPrice.IsPositive() && cmp <= 0

			err = p.ChangePrice(newPrice)
			if shouldSucceed != (err == nil) {
				t.Logf("FAIL: old=%s new=%s shouldSucceed=%v err=%v", oldPrice, newPrice, shouldSucceed, err)
				return false
			}
			if err != nil && !p.Price().Equals(oldPrice) {
				t.Logf("FAIL: failed change mutated price to %s", p.Price())
				return false
			}
			return true
		},
		gen.Int64Range(1, 10_000_000),
		gen.Int64Range(0, 20_000_000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
