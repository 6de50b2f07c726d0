package indicators

import (
	"math"
	"testing"
)

func TestMACD_Alignment(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + math.Sin(float64(i)/5)*10
	}

	res := MACD(prices, 12, 26, 9)

	if len(res.MACD) == 0 {
		t.Fatal("Expected non-empty MACD series")
	}
	if len(res.MACD) != len(res.Signal) || len(res.MACD) != len(res.Histogram) {
		t.Fatalf("Series misaligned: macd=%d signal=%d histogram=%d",
			len(res.MACD), len(res.Signal), len(res.Histogram))
	}
	for i := range res.MACD {
		if math.Abs(res.Histogram[i]-(res.MACD[i]-res.Signal[i])) > 1e-9 {
			t.Errorf("Histogram mismatch at %d", i)
		}
	}
}

func TestMACD_TrendSign(t *testing.T) {
	rising := make([]float64, 60)
	falling := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 + float64(i)*2
		falling[i] = 220 - float64(i)*2
	}

	up := MACD(rising, 12, 26, 9)
	if last := up.MACD[len(up.MACD)-1]; last <= 0 {
		t.Errorf("Expected positive MACD line in an uptrend, got %f", last)
	}

	down := MACD(falling, 12, 26, 9)
	if last := down.MACD[len(down.MACD)-1]; last >= 0 {
		t.Errorf("Expected negative MACD line in a downtrend, got %f", last)
	}
}

func TestMACD_InsufficientData(t *testing.T) {
	prices := make([]float64, 30) // below slow+signal = 35
	for i := range prices {
		prices[i] = float64(i)
	}

	res := MACD(prices, 12, 26, 9)
	if len(res.MACD) != 0 || len(res.Signal) != 0 || len(res.Histogram) != 0 {
		t.Errorf("Expected empty result for insufficient data, got %d points", len(res.MACD))
	}
}
