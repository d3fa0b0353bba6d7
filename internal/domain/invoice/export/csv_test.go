package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	res := sampleResult()

	t.Run("items", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, ItemRows(res.Items)))

		assert.Equal(t,
			"Pos,Article Number,Description,Quantity,Unit,Net Price,Order Number\n"+
				"010,ABC,widget,2,PZ,1234.50,98765\n"+
				"020,DEF,gadget,,KG,,\n",
			buf.String())
	})

	t.Run("delayed", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, DelayedRows(res.Delayed)))

		assert.Equal(t,
			"Pos,Article Number,Open Quantity,Description\n"+
				"123456,XYZ9,5,Some description\n",
			buf.String())
	})
}
