package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSample() *SampleMessage {
	return &SampleMessage{
		EventID:           "evt-1",
		UserID:            "u1",
		Date:              "2026-03-01",
		Steps:             8000,
		SleepMinutes:      420,
		SedentaryMinutes:  480,
		LocationDiversity: 45,
		ActiveMinutes:     25,
		SubmittedAt:       time.Now().UTC(),
	}
}

func TestSampleMessage_Day(t *testing.T) {
	day, err := validSample().Day()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), day)
}

func TestSampleMessage_Validate(t *testing.T) {
	assert.NoError(t, validSample().Validate())

	missing := validSample()
	missing.UserID = ""
	assert.Error(t, missing.Validate())

	badDate := validSample()
	badDate.Date = "03/01/2026"
	assert.Error(t, badDate.Validate())

	negative := validSample()
	negative.Steps = -1
	assert.Error(t, negative.Validate())

	outOfRange := validSample()
	outOfRange.LocationDiversity = 101
	assert.Error(t, outOfRange.Validate())
}
