package normalizer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/entity"
)

func TestNormalizeTwoBlockPairs(t *testing.T) {
	var table [][]string
	for i := 0; i < 6; i++ {
		table = append(table, []string{
			fmt.Sprintf("Widget %d", i), fmt.Sprintf("10%02d", i),
			fmt.Sprintf("Gadget %d", i), fmt.Sprintf("20%02d", i),
		})
	}

	items, err := Normalize(table)
	require.NoError(t, err)
	require.Len(t, items, 12)

	assert.Equal(t, "Widget 0", items[0].Item)
	assert.Equal(t, "1000", items[0].ProductNumber)
	assert.Equal(t, "Gadget 0", items[6].Item)
	assert.Equal(t, "2000", items[6].ProductNumber)

	for i, item := range items {
		assert.Equal(t, i, item.SortOrder, "sort order must equal emission index")
		assert.Equal(t, 0, item.CurrentQty)
	}
}

func TestNormalizeNumberColumnSeparatedByNoise(t *testing.T) {
	var table [][]string
	for i := 0; i < 6; i++ {
		table = append(table, []string{
			fmt.Sprintf("Item %d", i), "note", fmt.Sprintf("9%02d", i),
		})
	}

	items, err := Normalize(table)
	require.NoError(t, err)
	require.Len(t, items, 6)
	assert.Equal(t, "900", items[0].ProductNumber)
}

func TestNormalizeDensityThresholdBoundary(t *testing.T) {
	// 50 rows puts the threshold at max(5, 5) = 5 numeric cells.
	build := func(numeric int) [][]string {
		var table [][]string
		for i := 0; i < 50; i++ {
			number := "n/a"
			if i < numeric {
				number = fmt.Sprintf("%d", 100+i)
			}
			table = append(table, []string{fmt.Sprintf("Item %d", i), number})
		}
		return table
	}

	items, err := Normalize(build(5))
	require.NoError(t, err)
	assert.Len(t, items, 5)

	_, err = Normalize(build(4))
	assert.ErrorIs(t, err, ErrNoColumnPairs)
}

func TestNormalizeSkipsBlankAndNanNames(t *testing.T) {
	table := [][]string{
		{"  Blue   Towels ", "1001"},
		{"NaN", "1002"},
		{"   ", "1003"},
		{"Gloves", "not-a-number"},
		{"Gloves", "1004"},
		{"Tape", "1005"},
		{"Tape", "1005"},
		{"Wipes", "1006"},
	}

	items, err := Normalize(table)
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Item)
	}
	assert.Equal(t, []string{"Blue Towels", "Gloves", "Tape", "Wipes"}, names)
	assert.Equal(t, "1004", items[1].ProductNumber)
}

func TestNormalizeCanonicalizesProductNumbers(t *testing.T) {
	table := [][]string{
		{"Gloves", "1001.0"},
		{"Masks", "1002"},
		{"Wipes", "1003.0"},
		{"Tape", "1004"},
		{"Foil", "1005.0"},
	}

	items, err := Normalize(table)
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "1001", items[0].ProductNumber)
	assert.Equal(t, "1005", items[4].ProductNumber)
}

func TestNormalizeNoPairsDetected(t *testing.T) {
	table := [][]string{
		{"alpha", "beta"},
		{"gamma", "delta"},
	}

	items, err := Normalize(table)
	assert.ErrorIs(t, err, ErrNoColumnPairs)
	assert.Nil(t, items)

	_, err = Normalize(nil)
	assert.ErrorIs(t, err, ErrNoColumnPairs)
}

func TestNormalizeDeduplicatesKeepingFirst(t *testing.T) {
	table := [][]string{
		{"Gloves", "1001"},
		{"Gloves", "1001"},
		{"Gloves", "1002"},
		{"Masks", "1001"},
		{"Wipes", "1003"},
	}

	items, err := Normalize(table)
	require.NoError(t, err)
	require.Len(t, items, 4)

	keys := make(map[entity.ItemKey]struct{})
	for _, item := range items {
		keys[item.Key()] = struct{}{}
	}
	assert.Len(t, keys, 4)
}
