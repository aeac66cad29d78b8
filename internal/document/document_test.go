package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/agentkit/internal/document/documenttest"
)

func TestExtractTextPageOrder(t *testing.T) {
	data := documenttest.BuildPDF("A", "B")

	text, err := ExtractText(data)
	require.NoError(t, err)
	assert.Equal(t, "A\nB", text)
}

func TestExtractTextBlankMiddlePage(t *testing.T) {
	data := documenttest.BuildPDF("Total", "", "Due")

	text, err := ExtractText(data)
	require.NoError(t, err)
	assert.Equal(t, "Total\n\nDue", text)
}

func TestExtractTextMultiLinePage(t *testing.T) {
	data := documenttest.BuildPDF("Invoice\nAmount", "Paid")

	text, err := ExtractText(data)
	require.NoError(t, err)
	assert.Equal(t, "Invoice\nAmount\nPaid", text)
}

func TestExtractTextWordSpacing(t *testing.T) {
	text, err := ExtractText(documenttest.BuildPDF("Total due: $42.00 (net 30)"))
	require.NoError(t, err)
	assert.Equal(t, "Total due: $42.00 (net 30)", text)
}

func TestExtractTextEmptyDocument(t *testing.T) {
	text, err := ExtractText(documenttest.BuildPDF())
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExtractTextBlankPages(t *testing.T) {
	text, err := ExtractText(documenttest.BuildPDF("", ""))
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExtractTextInvalid(t *testing.T) {
	_, err := ExtractText([]byte("this is definitely not a pdf document at all"))
	assert.Error(t, err)

	_, err = ExtractText(nil)
	assert.Error(t, err)
}
