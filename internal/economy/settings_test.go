package economy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, Settings{
		CoinToGold:      10,
		GoldToDiamond:   10,
		CostPerMark:     0.5,
		RewardPractice:  1.0,
		RewardClassroom: 0.5,
		RewardSpark:     0.5,
	}, s)
	assert.NoError(t, s.Validate())
}

func TestSettings_Validate(t *testing.T) {
	bad := DefaultSettings()
	bad.CostPerMark = -1
	bad.CoinToGold = 2.5
	bad.GoldToDiamond = 0

	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "costPerMark")
	assert.Contains(t, err.Error(), "coinToGold")
	assert.Contains(t, err.Error(), "goldToDiamond")
}

func TestOverrides_Apply(t *testing.T) {
	var o Overrides
	require.NoError(t, json.Unmarshal([]byte(`{"costPerMark": 1, "rewardSpark": 0}`), &o))

	got := o.Apply(DefaultSettings())
	want := DefaultSettings()
	want.CostPerMark = 1
	want.RewardSpark = 0
	assert.Equal(t, want, got)

	assert.Equal(t, map[string]float64{"costPerMark": 1, "rewardSpark": 0}, o.Fields())
}

func TestOverrides_SetField(t *testing.T) {
	var o Overrides
	require.NoError(t, o.SetField("goldToDiamond", 20))
	assert.Error(t, o.SetField("exchangeRate", 1))

	assert.Equal(t, 20.0, o.Apply(DefaultSettings()).GoldToDiamond)
}

func TestSettings_AsOverridesRoundTrip(t *testing.T) {
	s := Settings{CoinToGold: 5, GoldToDiamond: 4, CostPerMark: 1, RewardPractice: 2, RewardClassroom: 1, RewardSpark: 0.25}
	assert.Equal(t, s, s.AsOverrides().Apply(DefaultSettings()))
	assert.Len(t, s.AsOverrides().Fields(), 6)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		from    Currency
		to      Currency
		amount  int64
		want    WalletTransaction
		wantErr bool
	}{
		{name: "coin to gold", from: Coin, to: Gold, amount: 30, want: WalletTransaction{Coins: -30, Gold: 3}},
		{name: "gold to diamond", from: Gold, to: Diamond, amount: 10, want: WalletTransaction{Gold: -10, Diamonds: 1}},
		{name: "not a multiple", from: Coin, to: Gold, amount: 15, wantErr: true},
		{name: "zero", from: Coin, to: Gold, amount: 0, wantErr: true},
		{name: "negative", from: Coin, to: Gold, amount: -10, wantErr: true},
		{name: "skips a tier", from: Coin, to: Diamond, amount: 100, wantErr: true},
		{name: "downward", from: Gold, to: Coin, amount: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.from, tt.to, tt.amount, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConversion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvert_CustomRatio(t *testing.T) {
	s := DefaultSettings()
	s.CoinToGold = 25
	got, err := Convert(Coin, Gold, 50, &s)
	require.NoError(t, err)
	assert.Equal(t, WalletTransaction{Coins: -50, Gold: 2}, got)

	s.CoinToGold = 0
	_, err = Convert(Coin, Gold, 50, &s)
	assert.ErrorIs(t, err, ErrInvalidConversion)
}

func TestCurrency(t *testing.T) {
	for _, c := range AllCurrencies() {
		parsed, err := ParseCurrency(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	c, err := ParseCurrency(" GOLD ")
	require.NoError(t, err)
	assert.Equal(t, Gold, c)

	_, err = ParseCurrency("spark")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
	assert.Equal(t, "currency(9)", Currency(9).String())

	_, err = json.Marshal(map[Currency]int64{Currency(0): 1})
	assert.Error(t, err)
}

func TestWalletTransaction(t *testing.T) {
	var tx WalletTransaction
	assert.True(t, tx.IsZero())
	tx.Add(Gold, 3)
	tx.Add(Currency(0), 100)
	assert.Equal(t, int64(3), tx.Amount(Gold))
	assert.Equal(t, int64(0), tx.Amount(Currency(0)))
	assert.Equal(t, WalletTransaction{Gold: -3}, tx.Neg())
}

func TestWalletTransaction_PlusAndShort(t *testing.T) {
	bal := WalletTransaction{Coins: 5, Gold: 1}
	after := bal.Plus(WalletTransaction{Coins: -5, Gold: -2})
	assert.Equal(t, WalletTransaction{Gold: -1}, after)

	c, short := after.Short()
	assert.True(t, short)
	assert.Equal(t, Gold, c)

	_, short = bal.Short()
	assert.False(t, short)
}
