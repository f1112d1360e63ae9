package triage_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitalsfirst/triage"
	"vitalsfirst/triage/triagetest"
)

func TestAuditCleanDataset(t *testing.T) {
	ds, err := triage.LoadDataset(strings.NewReader(triagetest.BalancedCSV()))
	require.NoError(t, err)

	auditor := triage.NewAuditor()
	assert.Empty(t, auditor.Audit(ds))
	assert.Equal(t, 20, auditor.Stats().Checked)
	assert.Zero(t, auditor.Stats().Flagged)
}

func TestAuditFlagsWithoutDropping(t *testing.T) {
	rows := append([]string(nil), triagetest.Balanced...)
	rows = append(rows,
		"20,M,98.2,70,14,118,78,98,1,Non-Urgent",  // duplicate of row 3
		"20,M,98.2,70,14,118,78,98,1,Urgent",      // conflicting label
		"150,F,98.6,80,16,80,90,120,3,Non-Urgent", // implausible
	)
	ds, err := triage.LoadDataset(strings.NewReader(triagetest.CSV(rows...)))
	require.NoError(t, err)
	require.Equal(t, 23, ds.Len())

	auditor := triage.NewAuditor()
	issues := auditor.Audit(ds)
	require.Len(t, issues, 3)

	assert.Equal(t, "duplicate", issues[0].Rule)
	assert.Equal(t, 20, issues[0].Row)
	assert.Contains(t, issues[0].Message, "duplicate of row 3")

	assert.Equal(t, "duplicate", issues[1].Rule)
	assert.Contains(t, issues[1].Message, "different label")

	assert.Equal(t, "plausibility", issues[2].Rule)
	assert.Contains(t, issues[2].Message, "Age=150")
	assert.Contains(t, issues[2].Message, "Oxygen_Saturation=120")
	assert.Contains(t, issues[2].Message, "diastolic 90 not below systolic 80")

	stats := auditor.Stats()
	assert.Equal(t, 23, stats.Checked)
	assert.Equal(t, 3, stats.Flagged)
	assert.Equal(t, 2, stats.Issues["duplicate"])
	assert.Equal(t, 23, ds.Len())
}

func TestAuditIsRepeatable(t *testing.T) {
	ds, err := triage.LoadDataset(strings.NewReader(triagetest.CSV(triagetest.Balanced[0], triagetest.Balanced[0])))
	require.NoError(t, err)

	auditor := triage.NewAuditor()
	assert.Len(t, auditor.Audit(ds), 1)
	assert.Len(t, auditor.Audit(ds), 1)
}
