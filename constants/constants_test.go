package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusTransitions(t *testing.T) {
	assert.True(t, JobStatusPending.CanTransition(JobStatusRunning))
	assert.True(t, JobStatusRunning.CanTransition(JobStatusDone))
	assert.True(t, JobStatusRunning.CanTransition(JobStatusFailed))

	assert.False(t, JobStatusPending.CanTransition(JobStatusDone))
	assert.False(t, JobStatusDone.CanTransition(JobStatusRunning))
	assert.False(t, JobStatusFailed.CanTransition(JobStatusRunning))

	assert.True(t, JobStatusDone.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
	assert.False(t, JobStatusRunning.Terminal())
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "pdf", NormalizeExt("pdf"))
	_, ok := AllowedExtensions[NormalizeExt(".Pdf")]
	assert.True(t, ok)
}
