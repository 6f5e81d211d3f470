package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digitpad/internal/classifier"
)

func prediction(digit int, expected *int, correct bool) *classifier.Prediction {
	p := &classifier.Prediction{Digit: digit, Expected: expected, Correct: correct}
	for i := range p.Confidences {
		p.Confidences[i] = 0.01
	}
	p.Confidences[digit] = 0.91
	return p
}

func TestSummary(t *testing.T) {
	seven, zero := 7, 0

	tests := []struct {
		name string
		p    *classifier.Prediction
		want string
	}{
		{"correct", prediction(7, &seven, true), "Prediction: 7  Expected: 7  Correct: ✔️"},
		{"wrong", prediction(3, &seven, false), "Prediction: 3  Expected: 7  Correct: ❌"},
		{"no label", prediction(3, nil, false), "Prediction: 3  Expected: N/A  Correct: ❌"},
		{"zero label", prediction(0, &zero, true), "Prediction: 0  Expected: 0  Correct: ✔️"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.p))
		})
	}
}

func TestLabels(t *testing.T) {
	labels := Labels()
	require.Len(t, labels, 10)
	assert.Equal(t, "Digit 0", labels[0])
	assert.Equal(t, "Digit 9", labels[9])
}

func TestBoardPresentReplacesChart(t *testing.T) {
	b := NewBoard(ChartOptions{Width: 300, Height: 150})
	assert.Nil(t, b.Chart())
	assert.Empty(t, b.Summary())

	b.Present(prediction(2, nil, false))
	first := b.Output()
	require.NotNil(t, first)
	assert.Equal(t, 300, first.Chart.Bounds().Dx())
	assert.Equal(t, 150, first.Chart.Bounds().Dy())
	assert.InDelta(t, 0.91, first.Values[2], 1e-9)

	b.Present(prediction(5, nil, false))
	second := b.Output()
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.NotSame(t, first.Chart, second.Chart)
	assert.Contains(t, second.Summary, "Prediction: 5")
	assert.InDelta(t, 0.91, second.Values[5], 1e-9)
}

func TestBoardChartDrawsTallestBar(t *testing.T) {
	b := NewBoard(DefaultChartOptions())
	b.Present(prediction(9, nil, false))
	img := b.Chart()
	require.NotNil(t, img)

	// The plot spans x in [40, 590]; bar 9 is centred in the last slot.
	slot := 550.0 / 10
	x := int(40 + slot*9 + slot/2)
	y := 150
	r, g, bl, _ := img.At(x, y).RGBA()
	assert.NotEqual(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, bl}, "bar should tint the plot")

	x0 := int(40 + slot/2)
	r, g, bl, _ = img.At(x0, y).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, bl}, "short bar leaves the middle white")
}

func TestBoardClear(t *testing.T) {
	b := NewBoard(ChartOptions{})
	b.Present(prediction(1, nil, false))
	require.NotNil(t, b.Output())

	b.Clear()
	assert.Nil(t, b.Output())
	assert.Nil(t, b.Chart())

	b.Present(nil)
	assert.Nil(t, b.Output())
}
