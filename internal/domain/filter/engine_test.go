package filter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinito/internal/core/apperror"
	"infinito/internal/core/types"
)

// row is a minimal record decoded the same way stored rows are.
type row struct {
	Code     string          `json:"code"`
	Type     string          `json:"type"`
	Status   string          `json:"status"`
	Material string          `json:"material"`
	Seller   string          `json:"seller"`
	Verified types.Flag      `json:"verified"`
	Date     types.Timestamp `json:"date"`
	Price    types.Amount    `json:"price"`
	Items    types.Count     `json:"totalItems"`
	CO2      types.Amount    `json:"co2"`
}

func (r row) FilterFields() Fields {
	return Fields{
		SearchTargets: []string{r.Code, r.Type, r.Material},
		Type:          r.Type,
		Status:        r.Status,
		Material:      r.Material,
		Seller:        r.Seller,
		Verified:      r.Verified.Bool(),
		Date:          r.Date,
		Price:         r.Price,
		TotalItems:    r.Items,
		CO2:           r.CO2,
	}
}

func decodeRows(t *testing.T, raw string) []row {
	t.Helper()
	var rows []row
	require.NoError(t, json.Unmarshal([]byte(raw), &rows))
	return rows
}

func codes(rows []row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Code)
	}
	return out
}

func TestApply_TypeEquality(t *testing.T) {
	rows := []row{
		{Code: "a", Type: "clothing"},
		{Code: "b", Type: "art"},
		{Code: "c", Type: "clothing"},
	}

	res, err := Apply(rows, Spec{Type: Some("clothing")}, KindContribution)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, codes(res.Kept))
	assert.Equal(t, Stats{Total: 3, Kept: 2, ActiveConstraints: 1}, res.Stats)
}

func TestApply_PriceRangeIsInclusive(t *testing.T) {
	rows := []row{
		{Code: "p1", Price: types.NewAmount(decimal.RequireFromString("10.00"))},
		{Code: "p2", Price: types.NewAmount(decimal.RequireFromString("25.00"))},
	}
	ten := decimal.NewFromInt(10)

	res, err := Apply(rows, Spec{Price: Between(ten, ten)}, KindProduct)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, codes(res.Kept))

	res, err = Apply(rows, Spec{Price: AtMost(decimal.NewFromInt(25))}, KindProduct)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, codes(res.Kept))
}

func TestApply_VerifiedStringIsCoerced(t *testing.T) {
	rows := decodeRows(t, `[{"code":"c1","verified":"true"},{"code":"c2","verified":false}]`)

	res, err := Apply(rows, Spec{Verified: Some(true)}, KindContribution)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, codes(res.Kept))

	res, err = Apply(rows, Spec{Verified: Some(false)}, KindContribution)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, codes(res.Kept))
}

func TestApply_UnparsableDateFailsRange(t *testing.T) {
	rows := decodeRows(t, `[
		{"code":"bad","date":"not a date"},
		{"code":"good","date":"2024-03-10"},
		{"code":"none"}
	]`)
	spec := Spec{Date: Between(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
	)}

	res, err := Apply(rows, spec, KindContribution)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, codes(res.Kept))
}

func TestApply_EmptyInput(t *testing.T) {
	spec := Spec{
		Search:   Some("x"),
		Verified: Some(true),
		Price:    AtLeast(decimal.NewFromInt(1)),
	}

	res, err := Apply([]row{}, spec, KindProduct)
	require.NoError(t, err)
	assert.NotNil(t, res.Kept)
	assert.Empty(t, res.Kept)
	assert.Equal(t, Stats{Total: 0, Kept: 0, ActiveConstraints: 3}, res.Stats)

	res, err = Apply[row](nil, spec, KindProduct)
	require.NoError(t, err)
	assert.NotNil(t, res.Kept)
	assert.Zero(t, res.Stats.Total)
}

func TestApply_SearchIsCaseInsensitive(t *testing.T) {
	rows := []row{
		{Code: "INF-2024-00001", Type: "clothing", Material: "Cotton T-Shirt"},
		{Code: "INF-2024-00002", Type: "clothing", Material: "Wool"},
	}

	res, err := Apply(rows, Spec{Search: Some("shirt")}, KindContribution)
	require.NoError(t, err)
	assert.Equal(t, []string{"INF-2024-00001"}, codes(res.Kept))

	res, err = Apply(rows, Spec{Search: Some("WOOL")}, KindContribution)
	require.NoError(t, err)
	assert.Equal(t, []string{"INF-2024-00002"}, codes(res.Kept))
}

func TestApply_SearchNeedleIsNotTrimmed(t *testing.T) {
	rows := []row{{Code: "INF-2024-00001", Material: "Cotton T-Shirt"}}

	for _, needle := range []string{"shirt ", " shirt", "t- shirt"} {
		res, err := Apply(rows, Spec{Search: Some(needle)}, KindContribution)
		require.NoError(t, err)
		assert.Empty(t, res.Kept, "needle %q", needle)
	}

	res, err := Apply(rows, Spec{Search: Some("cotton t")}, KindContribution)
	require.NoError(t, err)
	assert.Len(t, res.Kept, 1)
}

func TestApply_NullSearchTargetsNeverMatch(t *testing.T) {
	rows := []row{{Code: "x"}}

	res, err := Apply(rows, Spec{Search: Some("clothing")}, KindContribution)
	require.NoError(t, err)
	assert.Empty(t, res.Kept)
}

func TestApply_KindGating(t *testing.T) {
	rows := []row{
		{Code: "a", Material: "cotton"},
		{Code: "b", Material: "wool"},
	}
	spec := Spec{
		Price:    Between(decimal.NewFromInt(1000), decimal.NewFromInt(2000)),
		Material: Some("wool"),
		Seller:   Some("nobody"),
	}

	res, err := Apply(rows, spec, KindContribution)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, codes(res.Kept))
	assert.Equal(t, 3, res.Stats.ActiveConstraints)

	res, err = Apply(rows, Spec{TotalItems: AtLeast[int64](5)}, KindProduct)
	require.NoError(t, err)
	assert.Len(t, res.Kept, 2)
}

func TestApply_SellerIsSubstring(t *testing.T) {
	rows := []row{
		{Code: "a", Seller: "Tienda Verde"},
		{Code: "b", Seller: "Ropa Azul"},
	}

	res, err := Apply(rows, Spec{Seller: Some("verde")}, KindProduct)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, codes(res.Kept))

	res, err = Apply(rows, Spec{Seller: Some(" verde")}, KindProduct)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, codes(res.Kept))

	res, err = Apply(rows, Spec{Seller: Some("verde ")}, KindProduct)
	require.NoError(t, err)
	assert.Empty(t, res.Kept)
}

func TestApply_MissingCountFailsRange(t *testing.T) {
	rows := decodeRows(t, `[
		{"code":"a","totalItems":3},
		{"code":"b","totalItems":2.5},
		{"code":"c"},
		{"code":"d","totalItems":"7"}
	]`)

	res, err := Apply(rows, Spec{TotalItems: Between[int64](3, 7)}, KindContribution)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, codes(res.Kept))
}

func TestApply_InvertedRangeMatchesNothing(t *testing.T) {
	rows := []row{{Code: "a", CO2: types.AmountFromFloat(5)}}

	res, err := Apply(rows, Spec{CO2: Between(decimal.NewFromInt(10), decimal.NewFromInt(1))}, KindContribution)
	require.NoError(t, err)
	assert.Empty(t, res.Kept)
}

func TestApply_ContractViolations(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		kind Kind
	}{
		{name: "unknown kind", spec: Spec{}, kind: Kind("order")},
		{name: "empty kind", spec: Spec{}, kind: ""},
		{name: "blank search", spec: Spec{Search: Some("")}, kind: KindContribution},
		{name: "whitespace type", spec: Spec{Type: Some("   ")}, kind: KindProduct},
		{name: "bad expression", spec: Spec{Expression: Some("type ==")}, kind: KindContribution},
		{name: "non-boolean expression", spec: Spec{Expression: Some("co2 + 1.0")}, kind: KindContribution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply([]row{{Code: "a"}}, tt.spec, tt.kind)
			require.Error(t, err)
			assert.True(t, apperror.IsContractViolation(err), "got %v", err)
		})
	}
}

func TestApply_Expression(t *testing.T) {
	rows := decodeRows(t, `[
		{"code":"a","type":"clothing","co2":12.5,"date":"2024-05-01"},
		{"code":"b","type":"art","co2":3},
		{"code":"c","type":"clothing"}
	]`)

	res, err := Apply(rows, Spec{Expression: Some(`type == "clothing" && co2 > 10`)}, KindContribution)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, codes(res.Kept))

	res, err = Apply(rows, Spec{Expression: Some(`date > timestamp("2024-01-01T00:00:00Z")`)}, KindContribution)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, codes(res.Kept))
}

func TestApply_Properties(t *testing.T) {
	rows := decodeRows(t, `[
		{"code":"1","type":"clothing","status":"pending","material":"cotton","verified":true,"co2":4.2,"totalItems":3,"date":"2024-02-01"},
		{"code":"2","type":"art","status":"verified","material":"linen","verified":"true","co2":1,"totalItems":1,"date":"2024-06-15"},
		{"code":"3","type":"clothing","status":"delivered","material":"wool","verified":false,"totalItems":10,"date":"bogus"},
		{"code":"4","type":"footwear","status":"pending","material":"leather","co2":9.75,"date":"2023-11-30"},
		{"code":"5","type":"clothing","status":"verified","material":"Cotton blend","verified":1,"co2":2.5,"totalItems":4}
	]`)

	t.Run("unset spec is identity", func(t *testing.T) {
		for _, kind := range Kinds() {
			res, err := Apply(rows, Spec{}, kind)
			require.NoError(t, err)
			assert.Equal(t, rows, res.Kept)
			assert.Equal(t, Stats{Total: 5, Kept: 5, ActiveConstraints: 0}, res.Stats)
		}
	})

	specs := []Spec{
		{Type: Some("clothing")},
		{Search: Some("cotton")},
		{Verified: Some(true)},
		{CO2: AtLeast(decimal.NewFromInt(2))},
		{Date: AtMost(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{Type: Some("clothing"), TotalItems: Between[int64](3, 4)},
	}

	t.Run("idempotent", func(t *testing.T) {
		for _, spec := range specs {
			first, err := Apply(rows, spec, KindContribution)
			require.NoError(t, err)
			second, err := Apply(rows, spec, KindContribution)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		}
	})

	t.Run("kept is an ordered subsequence", func(t *testing.T) {
		for _, spec := range specs {
			res, err := Apply(rows, spec, KindContribution)
			require.NoError(t, err)
			i := 0
			for _, k := range res.Kept {
				for i < len(rows) && rows[i].Code != k.Code {
					i++
				}
				require.Less(t, i, len(rows), "kept %s out of order", k.Code)
				i++
			}
		}
	})

	t.Run("adding a constraint never grows kept", func(t *testing.T) {
		base := Spec{Type: Some("clothing")}
		before, err := Apply(rows, base, KindContribution)
		require.NoError(t, err)

		narrowed := base
		narrowed.Verified = Some(true)
		after, err := Apply(rows, narrowed, KindContribution)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(after.Kept), len(before.Kept))
		assert.Subset(t, codes(before.Kept), codes(after.Kept))
		assert.Equal(t, []string{"1", "5"}, codes(after.Kept))
	})

	t.Run("does not mutate inputs", func(t *testing.T) {
		snapshot := append([]row(nil), rows...)
		spec := Spec{Search: Some("Cotton")}
		_, err := Apply(rows, spec, KindContribution)
		require.NoError(t, err)
		assert.Equal(t, snapshot, rows)
		v, _ := spec.Search.Get()
		assert.Equal(t, "Cotton", v)
	})
}

func TestSpec_JSON(t *testing.T) {
	var spec Spec
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "clothing",
		"search": null,
		"verified": false,
		"co2": {"min": "1.5", "max": null}
	}`), &spec))

	assert.Equal(t, Some("clothing"), spec.Type)
	assert.False(t, spec.Search.IsSet())
	assert.Equal(t, Some(false), spec.Verified)
	lo, ok := spec.CO2.Min.Get()
	require.True(t, ok)
	assert.True(t, lo.Equal(decimal.RequireFromString("1.5")))
	assert.False(t, spec.CO2.Max.IsSet())
	assert.Equal(t, 3, spec.ActiveCount())
}
