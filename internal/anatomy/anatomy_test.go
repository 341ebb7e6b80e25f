package anatomy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/anatomy"
	"github.com/dudu/poseperfect/internal/scoring"
)

func TestStubs(t *testing.T) {
	img := gocv.NewMat()
	defer img.Close()

	muscularity, err := anatomy.MuscularityStub{}.Analyze(img)
	require.NoError(t, err)
	assert.Equal(t, scoring.Score(88), muscularity.Overall())
	assert.Equal(t, anatomy.OverallFullnessKey, muscularity.OverallKey())
	deltoids, ok := muscularity.Get("Deltoids")
	assert.True(t, ok)
	assert.Equal(t, scoring.Score(92), deltoids)

	conditioning, err := anatomy.ConditioningStub{}.Analyze(img)
	require.NoError(t, err)
	assert.Equal(t, scoring.Score(86), conditioning.Overall())
	assert.Len(t, conditioning.Entries(), 3)
}

func TestScoresFromOutput(t *testing.T) {
	config := anatomy.ConditioningModelConfig("unused.onnx")

	t.Run("scales and clamps", func(t *testing.T) {
		set, err := anatomy.ScoresFromOutput(config, []float32{0.5, 1.7, -0.2})
		require.NoError(t, err)

		separation, _ := set.Get("Separation")
		definition, _ := set.Get("Abdominal Definition")
		assert.Equal(t, scoring.Score(50), separation)
		assert.Equal(t, scoring.Score(100), definition)
		assert.Equal(t, scoring.Score(0), set.Overall())
	})

	t.Run("too few values", func(t *testing.T) {
		_, err := anatomy.ScoresFromOutput(config, []float32{0.5})
		assert.Error(t, err)
	})

	t.Run("muscularity layout has its overall key", func(t *testing.T) {
		m := anatomy.MuscularityModelConfig("unused.onnx")
		set, err := anatomy.ScoresFromOutput(m, []float32{0.125, 0.25, 0.5, 0.75})
		require.NoError(t, err)
		assert.Equal(t, scoring.Score(75), set.Overall())
	})
}
