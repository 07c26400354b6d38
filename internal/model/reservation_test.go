package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		status     Status
		labeled    bool
		successful bool
		canonical  Status
	}{
		{StatusPending, false, false, StatusPending},
		{StatusConfirmed, true, true, StatusConfirmed},
		{StatusCompleted, true, true, StatusCompleted},
		{StatusCancelled, true, false, StatusCancelled},
		{"canceled", true, false, StatusCancelled},
		{"no_show", false, false, "no_show"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.labeled, tt.status.Labeled())
			assert.Equal(t, tt.successful, tt.status.Successful())
			assert.Equal(t, tt.canonical, tt.status.Canonical())
		})
	}
}
