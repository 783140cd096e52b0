package diary_test

import (
	"testing"

	"github.com/caloriediary/go-diary-client/diary"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	for _, period := range diary.Periods {
		parsed, err := diary.ParsePeriod(string(period))
		require.NoError(t, err)
		require.Equal(t, period, parsed)
	}
}

func TestParsePeriodDefaultsToDay(t *testing.T) {
	parsed, err := diary.ParsePeriod("")
	require.NoError(t, err)
	require.Equal(t, diary.PeriodDay, parsed)
}

func TestParsePeriodRejectsUnknownValues(t *testing.T) {
	_, err := diary.ParsePeriod("fortnight")
	require.Error(t, err)
}
