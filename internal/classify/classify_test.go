package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestDirection_DeadZone(t *testing.T) {
	assert.Equal(t, Stable, Direction(nil))
	assert.Equal(t, Stable, Direction(f(0)))
	assert.Equal(t, Stable, Direction(f(0.99)))
	assert.Equal(t, Stable, Direction(f(-0.99)))
	assert.Equal(t, Up, Direction(f(1.0)))
	assert.Equal(t, Down, Direction(f(-1.0)))
	assert.Equal(t, Up, Direction(f(250)))
}

func TestDirectionColor_PolarityInverts(t *testing.T) {
	assert.Equal(t, Error, DirectionColor(Up, Spending))
	assert.Equal(t, Success, DirectionColor(Down, Spending))
	assert.Equal(t, Success, DirectionColor(Up, Income))
	assert.Equal(t, Error, DirectionColor(Down, Income))
	assert.Equal(t, Muted, DirectionColor(Stable, Spending))
	assert.Equal(t, Muted, DirectionColor(Stable, Income))
}

func TestNewChangeIndicator(t *testing.T) {
	ind := NewChangeIndicator(f(-12.34), Spending)
	assert.Equal(t, Down, ind.Direction)
	assert.Equal(t, Success, ind.Color)
	assert.Equal(t, "↓ 12.3%", ind.Text)

	none := NewChangeIndicator(nil, Income)
	assert.Equal(t, Stable, none.Direction)
	assert.Equal(t, Muted, none.Color)
	assert.Equal(t, "—", none.Text)
}

func TestBalanceStatus_ExactZeroIsNeutral(t *testing.T) {
	assert.Equal(t, Neutral, BalanceStatus(1000, 1000))
	assert.Equal(t, Surplus, BalanceStatus(1000, 999.99))
	assert.Equal(t, Deficit, BalanceStatus(1000, 1000.01))
	assert.Equal(t, Neutral, BalanceStatus(0, 0))
}

func TestPacingStatus_TotalOverClosedSet(t *testing.T) {
	want := map[PacingStatus]ColorRole{
		PacingBehind:  Success,
		PacingOnTrack: Accent,
		PacingAhead:   Warning,
	}
	for s, c := range want {
		assert.Equal(t, c, s.Color(), "color for %s", s)
		assert.NotEmpty(t, s.Label())
		assert.NotEmpty(t, s.Emoji())
	}
}

func TestParsePacingStatus(t *testing.T) {
	s, err := ParsePacingStatus(" On_Track ")
	require.NoError(t, err)
	assert.Equal(t, PacingOnTrack, s)

	_, err = ParsePacingStatus("sideways")
	require.Error(t, err)
	assert.Panics(t, func() { PacingStatus("sideways").Color() })
}

func TestSeverity_Ramp(t *testing.T) {
	order := []Severity{SeverityNone, SeverityLow, SeverityMedium, SeverityHigh}
	for i, s := range order {
		assert.Equal(t, i, s.Rank())
	}
	assert.Equal(t, Success, SeverityNone.Color())
	assert.Equal(t, Warning, SeverityLow.Color())
	assert.Equal(t, Error, SeverityMedium.Color())
	assert.Equal(t, Error, SeverityHigh.Color())
	assert.False(t, SeverityMedium.Intense())
	assert.True(t, SeverityHigh.Intense())

	_, err := ParseSeverity("extreme")
	require.Error(t, err)
}

func TestParseEnums(t *testing.T) {
	m, err := ParsePacingMode("stability")
	require.NoError(t, err)
	assert.Equal(t, ModeStability, m)

	ts, err := ParseTargetStatus("established")
	require.NoError(t, err)
	assert.Equal(t, "Established", ts.Label())

	cs, err := ParseComputationStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, Accent, cs.Color())

	_, err = ParseComputationStatus("")
	require.Error(t, err)
}
