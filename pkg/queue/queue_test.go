package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJobType(t *testing.T) {
	for _, s := range []string{"daily_cycle", "status_report", "resend"} {
		jt, err := ParseJobType(s)
		assert.NoError(t, err)
		assert.Equal(t, JobType(s), jt)
	}
	_, err := ParseJobType("purge_everything")
	assert.Error(t, err)
}
