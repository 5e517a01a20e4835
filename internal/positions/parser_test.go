package positions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionwatch/optionwatch/internal/models"
)

func TestParse(t *testing.T) {
	t.Run("groups legs by underlying", func(t *testing.T) {
		feed := `[
			{"Underlying":"XYZ","Put/Call":"CALL","Qty":2,"Side":"Long","Strike":110,"Exp":"2026-11-21","DTE":264,"Avg Price":3.50,"Market Value":700,"Short Open PL":0,"Option Symbol":"XYZ261121C00110000"},
			{"Underlying":"XYZ","Put/Call":"CALL","Qty":1,"Side":"Long","Strike":115,"Exp":"2026-11-21","DTE":264,"Avg Price":2.10,"Market Value":210,"Short Open PL":0,"Option Symbol":"XYZ261121C00115000"},
			{"Underlying":"XYZ","Put/Call":"PUT","Qty":-1,"Side":"Short","Strike":90,"Exp":"2026-11-21","DTE":264,"Avg Price":1.80,"Market Value":-180,"Short Open PL":20,"Option Symbol":"XYZ261121P00090000"},
			{"Underlying":"ABC","Put/Call":"PUT","Qty":3,"Side":"Long","Strike":50,"Exp":"2026-10-16","DTE":228,"Avg Price":0.95,"Market Value":285,"Short Open PL":0,"Option Symbol":"ABC261016P00050000"}
		]`

		summaries, err := Parse(feed)

		require.NoError(t, err)
		require.Len(t, summaries, 2)

		// Output is sorted by symbol.
		abc, xyz := summaries[0], summaries[1]
		assert.Equal(t, "ABC", abc.Symbol)
		assert.Equal(t, 1, abc.Puts)
		assert.Equal(t, "XYZ", xyz.Symbol)
		assert.Equal(t, 2, xyz.Calls)
		assert.Equal(t, 1, xyz.Puts)
		assert.Len(t, xyz.Legs, 3)
		assert.Equal(t, "2 calls and 1 put", xyz.Description())
	})

	t.Run("skips malformed rows without failing the pass", func(t *testing.T) {
		feed := `[
			{"Underlying":"","Put/Call":"CALL","Qty":1},
			{"Underlying":"XYZ","Put/Call":"STOCK","Qty":100},
			{"Underlying":"XYZ","Put/Call":"CALL","Qty":2,"Side":"Long","Strike":110,"Exp":"2026-11-21","DTE":264,"Avg Price":3.50,"Market Value":700,"Short Open PL":0,"Option Symbol":"XYZ261121C00110000"}
		]`

		summaries, err := Parse(feed)

		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "XYZ", summaries[0].Symbol)
		assert.Equal(t, 1, summaries[0].Calls)
	})

	t.Run("tolerates string-encoded numerics", func(t *testing.T) {
		feed := `[{"Underlying":"xyz","Put/Call":"put","Qty":"-2","Side":"Short","Strike":"90.5","Exp":"2026-11-21","DTE":"264","Avg Price":"1.80","Market Value":"-360","Short Open PL":"40","Option Symbol":"XYZ261121P00090500"}]`

		summaries, err := Parse(feed)

		require.NoError(t, err)
		require.Len(t, summaries, 1)
		leg := summaries[0].Legs[0]
		assert.Equal(t, models.OptionTypePut, leg.Type)
		assert.Equal(t, -2.0, leg.Qty)
		assert.Equal(t, 264, leg.DTE)
		strike, _ := leg.Strike.Float64()
		assert.Equal(t, 90.5, strike)
	})

	t.Run("not a JSON array is an error", func(t *testing.T) {
		_, err := Parse(`{"Underlying":"XYZ"}`)
		require.Error(t, err)
	})

	t.Run("empty feed is an error", func(t *testing.T) {
		_, err := Parse(`[]`)
		require.Error(t, err)
	})

	t.Run("all rows malformed is an error", func(t *testing.T) {
		_, err := Parse(`[{"Underlying":"","Put/Call":"CALL"}]`)
		require.Error(t, err)
	})
}

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "BRK.B", NormalizeTicker("BRK/B"))
	assert.Equal(t, "AAPL", NormalizeTicker(" aapl "))
	assert.Equal(t, "$SPX", NormalizeTicker("$SPX"))
}

func TestTickers(t *testing.T) {
	t.Run("deduplicates symbols", func(t *testing.T) {
		summaries := []*models.PositionSummary{
			{Symbol: "XYZ"},
			{Symbol: "ABC"},
			{Symbol: "XYZ"},
		}

		assert.Equal(t, []string{"XYZ", "ABC"}, Tickers(summaries))
	})

	t.Run("symbols that normalize alike appear once", func(t *testing.T) {
		summaries := []*models.PositionSummary{
			{Symbol: "BRK/B"},
			{Symbol: "BRK.B"},
		}

		assert.Equal(t, []string{"BRK.B"}, Tickers(summaries))
	})
}
