package shipping

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shared"
)

func TestValidatePincode(t *testing.T) {
	tests := []struct {
		name    string
		pincode string
		wantErr bool
	}{
		{name: "valid", pincode: "400001"},
		{name: "all zeros", pincode: "000000"},
		{name: "too short", pincode: "40001", wantErr: true},
		{name: "too long", pincode: "4000011", wantErr: true},
		{name: "letters", pincode: "40A001", wantErr: true},
		{name: "empty", pincode: "", wantErr: true},
		{name: "whitespace", pincode: " 40001", wantErr: true},
		{name: "unicode digits", pincode: "४००००१", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePincode(tt.pincode)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPincode)
				assert.True(t, shared.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestZoneTable_Resolve(t *testing.T) {
	table := DefaultZoneTable()

	tests := []struct {
		pincode string
		want    ZoneCode
	}{
		{"400001", ZoneCodeMetro},
		{"110001", ZoneCodeMetro},
		{"560034", ZoneCodeMetro},
		{"411001", ZoneCodeTier1},
		{"682001", ZoneCodeTier1},
		{"682555", ZoneCodeRemote}, // longer prefix wins over 682
		{"781001", ZoneCodeRemote},
		{"194101", ZoneCodeRemote},
		{"744101", ZoneCodeRemote},
		{"221001", ZoneCodeRest},
		{"000000", ZoneCodeRest},
	}

	for _, tt := range tests {
		t.Run(tt.pincode, func(t *testing.T) {
			zone, err := table.Resolve(tt.pincode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, zone.Code)
		})
	}

	t.Run("mumbai resolves to Metro Cities", func(t *testing.T) {
		zone, err := table.Resolve("400001")
		require.NoError(t, err)
		assert.Equal(t, "Metro Cities", zone.Name)
	})

	t.Run("malformed pincode", func(t *testing.T) {
		_, err := table.Resolve("4000")
		assert.ErrorIs(t, err, ErrInvalidPincode)
	})
}

func TestZoneTable_ResolveIsTotal(t *testing.T) {
	table := DefaultZoneTable()
	known := map[ZoneCode]bool{}
	for _, z := range table.Zones() {
		known[z.Code] = true
	}

	for n := 0; n < 1000000; n += 7 {
		pincode := fmt.Sprintf("%06d", n)
		zone, err := table.Resolve(pincode)
		require.NoError(t, err, pincode)
		require.True(t, known[zone.Code], "pincode %s resolved to unknown zone %q", pincode, zone.Code)
	}
}

func TestZoneTable_WithFreeShippingThresholds(t *testing.T) {
	base := DefaultZoneTable()
	table := base.WithFreeShippingThresholds(map[ZoneCode]decimal.Decimal{
		ZoneCodeMetro:  decimal.NewFromInt(999),
		ZoneCodeRest:   decimal.NewFromInt(-1),
		ZoneCodeRemote: decimal.NewFromInt(1500),
	})

	metro, err := table.Resolve("400001")
	require.NoError(t, err)
	require.NotNil(t, metro.FreeShippingThreshold)
	assert.True(t, metro.FreeShippingThreshold.Equal(decimal.NewFromInt(999)))

	rest, err := table.Resolve("221001")
	require.NoError(t, err)
	assert.Nil(t, rest.FreeShippingThreshold)

	remote, err := table.Resolve("781001")
	require.NoError(t, err)
	require.NotNil(t, remote.FreeShippingThreshold)
	assert.True(t, remote.FreeShippingThreshold.Equal(decimal.NewFromInt(1500)))

	original, err := base.Resolve("400001")
	require.NoError(t, err)
	assert.True(t, original.FreeShippingThreshold.Equal(decimal.NewFromInt(499)), "source table must not change")
}
