package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPickTask(t *testing.T) {
	line := ShipmentLine{LineID: "line-1", SKU: "SKU-100", Quantity: 3, Location: "A-01-01"}

	task := NewPickTask("wave-1", "ship-1", line)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, KindPick, task.Kind)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, "SKU-100", task.SKU)
	assert.Equal(t, 3, task.Quantity)
	assert.Equal(t, "A-01-01", task.Location)
	require.NotNil(t, task.Pick)
	assert.Equal(t, "wave-1", task.Pick.WaveID)
	assert.Equal(t, "ship-1", task.Pick.ShipmentID)
	assert.Equal(t, "line-1", task.Pick.LineID)
	assert.Nil(t, task.ClaimedBy)
	assert.Len(t, task.GetDomainEvents(), 1)
}

func TestNewCountTask_RecordsSystemQuantity(t *testing.T) {
	task := NewCountTask("B-02-03", "SKU-200", 25)

	assert.Equal(t, KindCount, task.Kind)
	require.NotNil(t, task.Count)
	assert.Equal(t, 25, task.Count.SystemQuantity)
	assert.Nil(t, task.Count.CountedQuantity)
	assert.Nil(t, task.Count.Variance)
}

func TestParseTaskKind(t *testing.T) {
	tests := []struct {
		input   string
		want    TaskKind
		wantErr bool
	}{
		{"pick", KindPick, false},
		{"putaway", KindPutaway, false},
		{"count", KindCount, false},
		{"PICK", "", true},
		{"replenish", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseTaskKind(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownTaskKind)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, kind)
			}
		})
	}
}

func TestTask_Claim(t *testing.T) {
	task := NewCountTask("A-01-01", "SKU-1", 10)

	err := task.Claim("worker-1")

	require.NoError(t, err)
	assert.Equal(t, TaskStatusInProgress, task.Status)
	require.NotNil(t, task.ClaimedBy)
	assert.Equal(t, "worker-1", *task.ClaimedBy)
	assert.NotNil(t, task.ClaimedAt)
}

func TestTask_Claim_AlreadyClaimed(t *testing.T) {
	task := NewCountTask("A-01-01", "SKU-1", 10)
	require.NoError(t, task.Claim("worker-1"))

	err := task.Claim("worker-2")

	assert.ErrorIs(t, err, ErrTaskAlreadyClaimed)
	assert.Equal(t, "worker-1", *task.ClaimedBy)
}

func TestTask_Claim_AlreadyCompleted(t *testing.T) {
	task := NewCountTask("A-01-01", "SKU-1", 10)
	require.NoError(t, task.Claim("worker-1"))
	require.NoError(t, task.CompleteCount("worker-1", 10))

	err := task.Claim("worker-2")

	assert.ErrorIs(t, err, ErrTaskAlreadyCompleted)
}

func TestTask_Release(t *testing.T) {
	task := NewCountTask("A-01-01", "SKU-1", 10)
	require.NoError(t, task.Claim("worker-1"))

	err := task.Release("worker-1")

	require.NoError(t, err)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Nil(t, task.ClaimedBy)
	assert.Nil(t, task.ClaimedAt)
}

func TestTask_Release_NotClaimant(t *testing.T) {
	task := NewCountTask("A-01-01", "SKU-1", 10)
	require.NoError(t, task.Claim("worker-1"))

	err := task.Release("worker-2")

	assert.ErrorIs(t, err, ErrTaskNotClaimedByCaller)
	assert.Equal(t, TaskStatusInProgress, task.Status)
}

func TestTask_Release_Unclaimed(t *testing.T) {
	task := NewCountTask("A-01-01", "SKU-1", 10)

	err := task.Release("worker-1")

	assert.ErrorIs(t, err, ErrTaskNotClaimedByCaller)
}

func TestTask_Complete_NotClaimant(t *testing.T) {
	task := NewPutawayTask("asn-1", "SKU-1", 5, "DOCK-01", "A-01-01")
	require.NoError(t, task.Claim("worker-1"))

	err := task.Complete("worker-2")

	assert.ErrorIs(t, err, ErrTaskNotClaimedByCaller)
}

func TestTask_ReleaseAndReclaim(t *testing.T) {
	task := NewPutawayTask("asn-1", "SKU-1", 5, "DOCK-01", "A-01-01")
	require.NoError(t, task.Claim("worker-1"))
	require.NoError(t, task.Release("worker-1"))

	err := task.Claim("worker-2")

	require.NoError(t, err)
	assert.Equal(t, "worker-2", *task.ClaimedBy)
}

func TestTask_CompleteCount_Variance(t *testing.T) {
	tests := []struct {
		name         string
		system       int
		counted      int
		wantVariance int
		wantTicket   bool
	}{
		{"exact match", 25, 25, 0, false},
		{"shrinkage", 75, 73, 2, true},
		{"overage", 40, 42, -2, true},
		{"large shrinkage", 40, 20, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := NewCountTask("A-01-01", "SKU-1", tt.system)
			require.NoError(t, task.Claim("worker-1"))

			err := task.CompleteCount("worker-1", tt.counted)

			require.NoError(t, err)
			assert.Equal(t, TaskStatusCompleted, task.Status)
			require.NotNil(t, task.Count.CountedQuantity)
			assert.Equal(t, tt.counted, *task.Count.CountedQuantity)
			require.NotNil(t, task.Count.Variance)
			assert.Equal(t, tt.wantVariance, *task.Count.Variance)
			assert.Equal(t, tt.wantTicket, task.HasVariance())
		})
	}
}

func TestTask_CompleteCount_Negative(t *testing.T) {
	task := NewCountTask("A-01-01", "SKU-1", 10)
	require.NoError(t, task.Claim("worker-1"))

	err := task.CompleteCount("worker-1", -1)

	assert.ErrorIs(t, err, ErrNegativeCountedQty)
	assert.Equal(t, TaskStatusInProgress, task.Status)
}

func TestTask_CompleteCount_WrongKind(t *testing.T) {
	task := NewPutawayTask("asn-1", "SKU-1", 5, "DOCK-01", "A-01-01")
	require.NoError(t, task.Claim("worker-1"))

	err := task.CompleteCount("worker-1", 5)

	assert.ErrorIs(t, err, ErrNotCountTask)
}

func TestTask_CompleteCount_ZeroCounted(t *testing.T) {
	task := NewCountTask("A-01-01", "SKU-1", 8)
	require.NoError(t, task.Claim("worker-1"))

	err := task.CompleteCount("worker-1", 0)

	require.NoError(t, err)
	assert.Equal(t, 8, *task.Count.Variance)
}
