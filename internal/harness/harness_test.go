package harness

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/corepath/shardbench/internal/pcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("0", true)
	require.NoError(t, err)
	assert.Equal(t, ModeNone, m)

	m, err = ParseMode("1", true)
	require.NoError(t, err)
	assert.Equal(t, ModeTotal, m)

	m, err = ParseMode("2", false)
	require.NoError(t, err)
	assert.Equal(t, ModeSwitching, m)
}

func TestParseModeInvalid(t *testing.T) {
	_, err := ParseMode("x", true)
	assert.Error(t, err)

	m, err := ParseMode("x", false)
	assert.NoError(t, err)
	assert.Equal(t, ModeNone, m)
}

func TestWriteReportAVG(t *testing.T) {
	r := &Report{
		WorkerCores:      []int{1, 2},
		Mode:             ModeNone,
		RunDuration:      time.Second,
		ProcessedPackets: 1000,
		StageCycles:      []uint64{1000, 1000},
		NumCores:         4,
		TSCHz:            1_000_000,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "Using worker cores: [1, 2]")
	assert.Contains(t, out, "# AVG")
}

func requireOnlineCores(t *testing.T, n int) {
	t.Helper()
	online, err := pcore.OnlineCores()
	require.NoError(t, err)
	if online < n {
		t.Skipf("need at least %d online cores, have %d", n, online)
	}
}

func TestRunSWSmoke(t *testing.T) {
	requireOnlineCores(t, 3)

	cfg := RunConfig{
		WorkerCores:    []int{2},
		GeneratorCore:  1,
		ControllerCore: 0,
		Duration:       30 * time.Millisecond,
		StageCycles:    []uint64{100},
		Mode:           ModeNone,
		Fast:           true,
	}
	report, err := RunSW(cfg)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.ProcessedPackets, uint64(0))

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, report))
	assert.True(t, strings.Contains(buf.String(), "# AVG"))
}

func TestRunDSWSmoke(t *testing.T) {
	requireOnlineCores(t, 3)

	cfg := RunConfig{
		WorkerCores:    []int{1, 2},
		GeneratorCore:  0,
		ControllerCore: 0,
		Duration:       30 * time.Millisecond,
		StageCycles:    []uint64{100, 100},
		Mode:           ModeTotal,
		Fast:           true,
	}
	report, err := RunDSW(cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, report))
	assert.True(t, strings.Contains(buf.String(), "# TL"))
}
