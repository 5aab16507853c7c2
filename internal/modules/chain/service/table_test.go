package service_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"option_chain/internal/models"
	"option_chain/internal/modules/chain/service"
)

func TestTable_Layout(t *testing.T) {
	a := service.NewAssembler(testConfig())
	rows := rowsFrom(
		entry(1, leg("C100", 100, models.OptionCall, 10, 500, 70)),
		entry(2, leg("P100", 100, models.OptionPut, 4, 300, 20)),
		entry(3, leg("C200", 200, models.OptionCall, 25.5, 10, 2)),
	)
	v := a.Assemble(rows, "CE.ltp + PE.ltp", true)

	out := service.Table(v)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, []string{"OI", "Volume", "LTP", "Strike", "LTP", "Volume", "OI", "Result"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"500", "70", "10", "100", "4", "20", "300", "14.00*"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"10", "2", "25.5", "200", "-", "-", "-", "25.50"}, strings.Fields(lines[2]))
	assert.Equal(t, "formula: CE.ltp + PE.ltp", lines[3])
}

func TestTable_Empty(t *testing.T) {
	a := service.NewAssembler(testConfig())
	out := service.Table(a.Assemble(nil, "CE.ltp", true))

	assert.Contains(t, out, "Waiting for data")
	assert.Contains(t, out, loginURL)
}

func TestTable_Disconnected(t *testing.T) {
	a := service.NewAssembler(testConfig())
	rows := rowsFrom(entry(1, leg("C100", 100, models.OptionCall, 1, 1, 1)))

	out := service.Table(a.Assemble(rows, "CE.ltp", false))

	assert.True(t, strings.HasSuffix(out, "(disconnected)"))
}
