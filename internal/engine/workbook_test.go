package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkbookCell(t *testing.T) {
	assert.Nil(t, workbookCell(Null()))
	assert.Equal(t, true, workbookCell(Bool(true)))
	assert.Equal(t, 42.5, workbookCell(Number(42.5)))
	assert.Equal(t, "alpha", workbookCell(Text("alpha")))
}
