package scoring_test

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/poseperfect/internal/scoring"
)

func TestScoreRatio(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  scoring.Score
	}{
		{name: "sentinel", ratio: 0.0, want: 0},
		{name: "baseline", ratio: 1.0, want: 0},
		{name: "ideal", ratio: 1.618, want: 100},
		{name: "above ideal", ratio: 2.0, want: 100},
		{name: "far above ideal", ratio: 9.5, want: 100},
		{name: "below baseline", ratio: 0.5, want: 0},
		{name: "halfway truncates", ratio: 1.309, want: 49},
		{name: "quarter", ratio: 1.1545, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.ScoreRatio(tt.ratio))
		})
	}
}

func TestScoreRatioIsMonotonic(t *testing.T) {
	prev := scoring.ScoreRatio(0.01)
	for r := 0.02; r < 3; r += 0.01 {
		got := scoring.ScoreRatio(r)
		require.GreaterOrEqual(t, got, prev, "ratio %v", r)
		require.True(t, got.Valid())
		prev = got
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, scoring.Score(0), scoring.Clamp(-12.5))
	assert.Equal(t, scoring.Score(100), scoring.Clamp(100.7))
	assert.Equal(t, scoring.Score(42), scoring.Clamp(42.99))
}

func TestTotalPackage(t *testing.T) {
	Convey("Given the default category weights", t, func() {
		Convey("When every category scores 100", func() {
			Convey("Then there is no imbalance penalty", func() {
				So(scoring.TotalPackage(100, 100, 100), ShouldEqual, 100)
			})
		})

		Convey("When every category scores 0", func() {
			So(scoring.TotalPackage(0, 0, 0), ShouldEqual, 0)
		})

		Convey("When symmetry 100, muscularity 88 and conditioning 86", func() {
			Convey("Then the penalised score truncates to 86", func() {
				So(scoring.TotalPackage(100, 88, 86), ShouldEqual, 86)
			})
		})

		Convey("When scores are spread out", func() {
			naive := 80*0.4 + 30*0.3 + 30*0.3

			Convey("Then the penalty pulls the score below the naive weighted average", func() {
				got := scoring.TotalPackage(80, 30, 30)
				So(float64(got), ShouldBeLessThan, naive)
				So(got, ShouldEqual, 38)
			})
		})

		Convey("When one athlete is balanced and another lopsided at the same weighted average", func() {
			balanced := scoring.TotalPackage(70, 70, 70)
			lopsided := scoring.TotalPackage(100, 60, 40)

			Convey("Then the balanced athlete scores higher", func() {
				So(balanced, ShouldBeGreaterThan, lopsided)
			})
		})

		Convey("When the spread is maximal", func() {
			Convey("Then the penalty factor stays positive", func() {
				So(scoring.TotalPackage(100, 0, 0), ShouldEqual, 21)
				So(scoring.TotalPackage(100, 100, 0), ShouldEqual, 37)
			})
		})

		Convey("When the inputs are out of range", func() {
			Convey("Then the total is still clamped to [0, 100]", func() {
				high := scoring.TotalPackage(150, 150, 150)
				low := scoring.TotalPackage(-20, -20, -20)

				So(high, ShouldEqual, scoring.MaxScore)
				So(high.Valid(), ShouldBeTrue)
				So(low, ShouldEqual, scoring.MinScore)
				So(low.Valid(), ShouldBeTrue)
			})
		})
	})

	Convey("Given custom weights", t, func() {
		Convey("When they do not sum to one", func() {
			_, err := scoring.TotalPackageWithWeights(scoring.Weights{Symmetry: 0.5, Muscularity: 0.5, Conditioning: 0.5}, 50, 50, 50)

			So(errors.Is(err, scoring.ErrInvalidWeights), ShouldBeTrue)
		})

		Convey("When a weight is negative", func() {
			_, err := scoring.TotalPackageWithWeights(scoring.Weights{Symmetry: 1.2, Muscularity: -0.2, Conditioning: 0}, 50, 50, 50)

			So(errors.Is(err, scoring.ErrInvalidWeights), ShouldBeTrue)
		})

		Convey("When all weight is on symmetry and scores are equal", func() {
			got, err := scoring.TotalPackageWithWeights(scoring.Weights{Symmetry: 1}, 64, 64, 64)

			So(err, ShouldBeNil)
			So(got, ShouldEqual, 64)
		})
	})
}

func TestCategoryScoreSet(t *testing.T) {
	Convey("Given a muscularity score set", t, func() {
		set, err := scoring.NewCategoryScoreSet("Muscularity", "Overall Fullness",
			scoring.Entry{Label: "Pectorals", Score: 85},
			scoring.Entry{Label: "Overall Fullness", Score: 88},
		)
		So(err, ShouldBeNil)

		Convey("Then the overall entry is exposed", func() {
			So(set.Overall(), ShouldEqual, 88)
			So(set.OverallKey(), ShouldEqual, "Overall Fullness")
			So(set.Category(), ShouldEqual, "Muscularity")
		})

		Convey("Then entries cannot be modified through the returned slice", func() {
			entries := set.Entries()
			entries[0].Score = 1
			got, ok := set.Get("Pectorals")
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, 85)
		})

		Convey("Then it encodes to JSON with the overall score", func() {
			b, err := json.Marshal(set)
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"overall":88`)
			So(string(b), ShouldContainSubstring, `"Pectorals":85`)
		})
	})

	Convey("Given invalid score sets", t, func() {
		_, err := scoring.NewCategoryScoreSet("X", "Overall X", scoring.Entry{Label: "A", Score: 5})
		So(errors.Is(err, scoring.ErrMissingOverall), ShouldBeTrue)

		_, err = scoring.NewCategoryScoreSet("X", "Overall X", scoring.Entry{Label: "Overall X", Score: 101})
		So(errors.Is(err, scoring.ErrScoreOutOfRange), ShouldBeTrue)

		_, err = scoring.NewCategoryScoreSet("X", "A", scoring.Entry{Label: "A", Score: 1}, scoring.Entry{Label: "A", Score: 2})
		So(errors.Is(err, scoring.ErrDuplicateLabel), ShouldBeTrue)

		So(func() { scoring.MustCategoryScoreSet("X", "missing") }, ShouldPanic)
	})
}
