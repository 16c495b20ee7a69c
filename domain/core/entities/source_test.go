package entities

import (
	"testing"
	"time"

	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingSource(t *testing.T) *Source {
	t.Helper()
	src, err := NewPendingSource(SourceSpec{
		ID:          valueobjects.NewSourceID(),
		Name:        "paper.pdf",
		Kind:        valueobjects.SourceKindFile,
		MediaType:   "application/pdf",
		Placeholder: "Content is being extracted...",
	})
	require.NoError(t, err)
	return src
}

func TestNewPendingSource(t *testing.T) {
	src := pendingSource(t)

	assert.Equal(t, valueobjects.SourceProcessing, src.Status())
	assert.Equal(t, "Content is being extracted...", src.Content())
	assert.Equal(t, 1, src.Page())
	assert.False(t, src.IsIndexed())
}

func TestNewPendingSource_Validation(t *testing.T) {
	tests := []struct {
		name string
		spec SourceSpec
	}{
		{name: "missing id", spec: SourceSpec{Name: "a", Kind: valueobjects.SourceKindFile}},
		{name: "missing name", spec: SourceSpec{ID: valueobjects.NewSourceID(), Kind: valueobjects.SourceKindFile}},
		{name: "url kind without url", spec: SourceSpec{ID: valueobjects.NewSourceID(), Name: "x", Kind: valueobjects.SourceKindVideo}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPendingSource(tt.spec)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}

func TestSource_MarkIndexed(t *testing.T) {
	src := pendingSource(t)

	require.NoError(t, src.MarkIndexed("", "extracted text"))

	assert.Equal(t, valueobjects.SourceIndexed, src.Status())
	assert.Equal(t, "paper.pdf", src.Name(), "empty name keeps the current one")
	assert.Equal(t, "extracted text", src.Content())
}

func TestSource_MarkIndexed_Renames(t *testing.T) {
	src := pendingSource(t)

	require.NoError(t, src.MarkIndexed("Attention Is All You Need", "text"))
	assert.Equal(t, "Attention Is All You Need", src.Name())
}

func TestSource_TerminalStatesAreFinal(t *testing.T) {
	indexed := pendingSource(t)
	require.NoError(t, indexed.MarkIndexed("", "text"))

	err := indexed.MarkFailed("boom")
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeConflict))
	assert.Equal(t, valueobjects.SourceIndexed, indexed.Status())

	failed := pendingSource(t)
	require.NoError(t, failed.MarkFailed("Could not extract text"))
	assert.Equal(t, valueobjects.SourceError, failed.Status())
	assert.Equal(t, "Could not extract text", failed.Content())

	err = failed.MarkIndexed("", "late text")
	assert.Error(t, err)
	assert.Equal(t, "Could not extract text", failed.Content())
}

func TestSource_CloneIsIndependent(t *testing.T) {
	src := pendingSource(t)
	c := src.Clone()

	require.NoError(t, c.MarkIndexed("", "text"))
	assert.Equal(t, valueobjects.SourceProcessing, src.Status())
}

func TestReconstructSource_ClampsPage(t *testing.T) {
	src := ReconstructSource(valueobjects.NewSourceID(), "a.txt", valueobjects.SourceKindFile,
		valueobjects.SourceIndexed, "text", 0, time.Now())
	assert.Equal(t, 1, src.Page())
}
